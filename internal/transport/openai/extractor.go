package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/usecase/extraction"
)

// Extractor turns a free-text request into filters with a JSON-mode chat completion.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ExtractorConfig holds the chat completion settings.
type ExtractorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewExtractor creates a chat-completion based filter extractor.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig(cfg.APIKey, cfg.BaseURL, cfg.Timeout)),
		model:  cfg.Model,
		logger: logger,
	}
}

// Extract implements extraction.Extractor. Every failure wraps domain.ErrExtractionFailed.
func (e *Extractor) Extract(
	ctx context.Context, query string, vocab catalog.Vocabulary,
) (filter.QueryFilters, error) {
	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: extraction.Prompt(query, vocab)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return filter.QueryFilters{}, fmt.Errorf("chat completion: %w", ctxErr)
		}
		return filter.QueryFilters{}, fmt.Errorf("chat completion: %w: %w", domain.ErrExtractionFailed, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return filter.QueryFilters{}, fmt.Errorf("chat completion returned no content: %w", domain.ErrExtractionFailed)
	}

	filters, err := extraction.ParseFilters([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return filter.QueryFilters{}, err
	}

	e.logger.Debug("filters extracted",
		zap.String("model", e.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return filters, nil
}
