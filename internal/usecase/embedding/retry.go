package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/metrics"
)

// RetryConfig controls retry behaviour for transient provider failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig retries three times starting at 250ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: 250 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// RetryEmbedder retries transient failures with exponential backoff.
// Permanent failures (rejected input, bad requests) are returned immediately.
type RetryEmbedder struct {
	inner    domain.Embedder
	cfg      RetryConfig
	provider string
	model    string
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetryEmbedder wraps inner with retries.
func NewRetryEmbedder(
	inner domain.Embedder, cfg RetryConfig, provider, model string, logger *zap.Logger,
) *RetryEmbedder {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return &RetryEmbedder{
		inner:    inner,
		cfg:      cfg,
		provider: provider,
		model:    model,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// Embed calls the inner embedder, retrying transient failures.
func (r *RetryEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var res domain.EmbeddingResult
	err := r.do(ctx, "embed", func() error {
		var err error
		res, err = r.inner.Embed(ctx, text)
		return err //nolint:wrapcheck // wrapped by do
	})
	return res, err
}

// BatchEmbed calls the inner batch embedder, retrying the whole batch on transient failures.
func (r *RetryEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var res domain.BatchEmbeddingResult
	err := r.do(ctx, "batch embed", func() error {
		var err error
		res, err = domain.EmbedAll(ctx, r.inner, texts)
		return err //nolint:wrapcheck // wrapped by do
	})
	return res, err
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (r *RetryEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := r.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (r *RetryEmbedder) do(ctx context.Context, op string, fn func() error) error {
	delay := r.cfg.BaseDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) || attempt >= r.cfg.MaxRetries {
			return fmt.Errorf("%s after %d attempts: %w", op, attempt+1, err)
		}

		r.logger.Warn("Retrying embedding request",
			zap.String("provider", r.provider),
			zap.String("model", r.model),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		metrics.EmbeddingRetriesTotal.WithLabelValues(r.provider, r.model).Inc()

		if err := r.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		delay = min(delay*2, r.cfg.MaxDelay)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
