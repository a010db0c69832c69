// Package ollama provides an embedding provider backed by a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/metrics"
)

const provider = "ollama"

// Embedder calls the Ollama batch /api/embed endpoint.
type Embedder struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// Config holds the Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", cfg.BaseURL, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder with one /api/embed call.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: texts})
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		e.logger.Warn("ollama embed failed",
			zap.Int("texts", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, classify(err)
	}

	if len(resp.Embeddings) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama returned %d vectors for %d texts: %w",
			len(resp.Embeddings), len(texts), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())
	if resp.PromptEvalCount > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, e.model, "prompt").Add(float64(resp.PromptEvalCount))
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, e.model, "total").Add(float64(resp.PromptEvalCount))
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   resp.Embeddings,
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck pings the Ollama server.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

func classify(err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("ollama error %d: %s", se.StatusCode, se.ErrorMessage)
		switch {
		case se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrEmbeddingProviderError, domain.ErrRateLimited)
		case se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrEmbeddingProviderError, domain.ErrEmbeddingInvalidInput)
		default:
			return fmt.Errorf("%s: %w", msg, domain.ErrEmbeddingProviderError)
		}
	}
	return fmt.Errorf("ollama request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
}
