package embedding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/menurank/internal/domain"
)

// NormalizingEmbedder scales every embedding to unit length so that cosine
// distance and inner product agree across providers.
type NormalizingEmbedder struct {
	inner domain.Embedder
}

// NewNormalizingEmbedder wraps inner with L2 normalisation.
func NewNormalizingEmbedder(inner domain.Embedder) *NormalizingEmbedder {
	return &NormalizingEmbedder{inner: inner}
}

// Embed returns the normalised embedding of text.
func (n *NormalizingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := n.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("normalize embed: %w", err)
	}
	res.Embedding = domain.Normalize(res.Embedding)
	return res, nil
}

// BatchEmbed returns normalised embeddings in input order.
func (n *NormalizingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := domain.EmbedAll(ctx, n.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("normalize batch embed: %w", err)
	}
	for i := range res.Embeddings {
		res.Embeddings[i] = domain.Normalize(res.Embeddings[i])
	}
	return res, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (n *NormalizingEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := n.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
