package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/kailas-cloud/menurank/internal/domain"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestNormalizingEmbedder_Embed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{3, 4}}}
	n := NewNormalizingEmbedder(inner)

	res, err := n.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(norm(res.Embedding)-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", norm(res.Embedding))
	}
	if math.Abs(float64(res.Embedding[0])-0.6) > 1e-6 {
		t.Errorf("embedding = %v", res.Embedding)
	}
}

func TestNormalizingEmbedder_BatchEmbed(t *testing.T) {
	inner := &mockEmbedder{batchResult: domain.BatchEmbeddingResult{
		Embeddings: [][]float32{{0, 2}, {0, 0}},
	}}
	n := NewNormalizingEmbedder(inner)

	res, err := n.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings[0][1] != 1 {
		t.Errorf("first = %v", res.Embeddings[0])
	}
	if res.Embeddings[1][0] != 0 || res.Embeddings[1][1] != 0 {
		t.Errorf("zero vector must stay zero, got %v", res.Embeddings[1])
	}
}
