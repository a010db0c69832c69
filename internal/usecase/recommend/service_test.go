package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/menurank/internal/domain"
	domcat "github.com/kailas-cloud/menurank/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
	"github.com/kailas-cloud/menurank/internal/usecase/index"
)

func TestGetRecommendations_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty query", Request{Query: "   "}},
		{"top_k too large", Request{Query: "dosa", TopK: 51}},
		{"negative top_k", Request{Query: "dosa", TopK: -1}},
		{"negative candidate_k", Request{Query: "dosa", CandidateK: -3}},
		{"negative max price", Request{Query: "dosa", Filters: &filter.QueryFilters{MaxPrice: filter.Ptr(-1.0)}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			emb := &mockEmbedder{}
			svc := New(&mockIndex{}, emb, nil, "menu", zap.NewNop())

			_, err := svc.GetRecommendations(context.Background(), tc.req)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if len(emb.texts) != 0 {
				t.Error("embedder must not be called for invalid requests")
			}
		})
	}
}

func TestGetRecommendations_CandidateK(t *testing.T) {
	tests := []struct {
		topK, candidateK int
		want             int
	}{
		{0, 0, 40},
		{2, 0, 30},
		{10, 0, 80},
		{5, 3, 5},
		{5, 100, 100},
	}

	for _, tc := range tests {
		idx := &mockIndex{}
		svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

		_, err := svc.GetRecommendations(context.Background(), Request{
			Query: "dosa", TopK: tc.topK, CandidateK: tc.candidateK,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx.lastK != tc.want {
			t.Errorf("top_k=%d candidate_k=%d: queried k=%d, want %d", tc.topK, tc.candidateK, idx.lastK, tc.want)
		}
		if idx.lastCollection != "menu" {
			t.Errorf("collection = %q, want menu", idx.lastCollection)
		}
	}
}

func TestGetRecommendations_RanksWithExplicitFilters(t *testing.T) {
	idx := &mockIndex{queryFn: func(context.Context, string, []float32, int) ([]result.Candidate, error) {
		return []result.Candidate{
			candidate("1", 0.9, false, 100),
			candidate("2", 0.8, true, 150),
			candidate("3", 0.5, true, 500),
		}, nil
	}}
	ext := &mockExtractor{}
	emb := &mockEmbedder{}
	svc := New(idx, emb, ext, "menu", zap.NewNop())

	res, err := svc.GetRecommendations(context.Background(), Request{
		Query:   "  veg thali ",
		Filters: &filter.QueryFilters{Veg: filter.Ptr(true), MaxPrice: filter.Ptr(200.0)},
		TopK:    5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.calls != 0 {
		t.Error("extractor must not run when filters are given")
	}
	if res.Extracted {
		t.Error("Extracted should be false for explicit filters")
	}
	if len(emb.texts) != 1 || emb.texts[0] != "veg thali" {
		t.Errorf("embedded %v, want trimmed query", emb.texts)
	}
	if res.Candidates != 3 {
		t.Errorf("Candidates = %d, want 3", res.Candidates)
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("len = %d, want 2", len(res.Recommendations))
	}
	if res.Recommendations[0].ItemID != "2" {
		t.Errorf("first = %s, want 2", res.Recommendations[0].ItemID)
	}
	if !res.Recommendations[1].HasTag(result.TagOverBudget) {
		t.Errorf("item 3 should be over budget, tags %v", res.Recommendations[1].ReasonTags)
	}
	if res.NoResults() {
		t.Error("NoResults should be false")
	}
}

func TestGetRecommendations_ExtractsFiltersWithVocabulary(t *testing.T) {
	idx := &mockIndex{queryFn: func(context.Context, string, []float32, int) ([]result.Candidate, error) {
		return []result.Candidate{candidate("1", 0.9, false, 100), candidate("2", 0.8, true, 150)}, nil
	}}
	ext := &mockExtractor{filters: filter.QueryFilters{Veg: filter.Ptr(true), Location: filter.Ptr(" ")}}
	svc := New(idx, &mockEmbedder{}, ext, "menu", zap.NewNop())
	svc.SetVocabulary(domcat.BuildVocabulary(testItems()))

	res, err := svc.GetRecommendations(context.Background(), Request{Query: "something veg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Extracted {
		t.Error("Extracted should be true")
	}
	if res.Filters.Location != nil {
		t.Error("blank extracted location must be unset")
	}
	if len(ext.vocab.Restaurants) != 2 {
		t.Errorf("extractor vocabulary = %+v", ext.vocab)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0].ItemID != "2" {
		t.Errorf("unexpected recommendations %+v", res.Recommendations)
	}
}

func TestGetRecommendations_ExtractionFailure(t *testing.T) {
	ext := &mockExtractor{err: fmt.Errorf("llm down: %w", domain.ErrExtractionFailed)}
	svc := New(&mockIndex{}, &mockEmbedder{}, ext, "menu", zap.NewNop())

	_, err := svc.GetRecommendations(context.Background(), Request{Query: "dosa"})
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestGetRecommendations_EmbeddingFailure(t *testing.T) {
	emb := &mockEmbedder{err: fmt.Errorf("timeout: %w", domain.ErrEmbeddingProviderError)}
	svc := New(&mockIndex{}, emb, nil, "menu", zap.NewNop())

	_, err := svc.GetRecommendations(context.Background(), Request{Query: "dosa"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestGetRecommendations_IndexFailure(t *testing.T) {
	idx := &mockIndex{queryFn: func(context.Context, string, []float32, int) ([]result.Candidate, error) {
		return nil, fmt.Errorf("conn refused: %w", domain.ErrIndexUnavailable)
	}}
	svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

	_, err := svc.GetRecommendations(context.Background(), Request{Query: "dosa"})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestGetRecommendations_NoResults(t *testing.T) {
	idx := &mockIndex{queryFn: func(context.Context, string, []float32, int) ([]result.Candidate, error) {
		return []result.Candidate{candidate("1", 0.9, false, 100)}, nil
	}}
	svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

	res, err := svc.GetRecommendations(context.Background(), Request{
		Query:   "veg",
		Filters: &filter.QueryFilters{Veg: filter.Ptr(true)},
	})
	if err != nil {
		t.Fatalf("no match is not an error, got %v", err)
	}
	if !res.NoResults() {
		t.Error("expected NoResults")
	}
	if res.Recommendations == nil {
		t.Error("recommendations should be an empty slice, not nil")
	}
}

func TestRebuildIndex(t *testing.T) {
	var got []domdoc.Document
	var progressed int
	idx := &mockIndex{rebuildFn: func(
		_ context.Context, _ string, docs []domdoc.Document, progress index.Progress,
	) (int, error) {
		got = docs
		if progress != nil {
			progress(len(docs), len(docs))
		}
		return len(docs), nil
	}}
	svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

	n, err := svc.RebuildIndex(context.Background(), &mockSource{items: testItems()}, "",
		WithProgress(func(done, _ int) { progressed = done }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != 2 || len(got) != 2 {
		t.Fatalf("indexed %d (%d docs), want 2", n, len(got))
	}
	if got[0].ID() != "item_1" || got[1].ID() != "item_2" {
		t.Errorf("ids = %s, %s", got[0].ID(), got[1].ID())
	}
	if idx.lastCollection != "menu" {
		t.Errorf("collection = %q, want default menu", idx.lastCollection)
	}
	if progressed != 2 {
		t.Errorf("progress = %d, want 2", progressed)
	}
	if v := svc.Vocabulary(); len(v.Cuisines) != 2 || v.Cuisines[0] != "Mughlai" {
		t.Errorf("vocabulary not refreshed: %+v", v)
	}
}

func TestRebuildIndex_OtherCollectionKeepsVocabulary(t *testing.T) {
	idx := &mockIndex{}
	svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

	if _, err := svc.RebuildIndex(context.Background(), &mockSource{items: testItems()}, "staging"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.lastCollection != "staging" {
		t.Errorf("collection = %q, want staging", idx.lastCollection)
	}
	if !svc.Vocabulary().IsEmpty() {
		t.Error("rebuilding another collection must not change the served vocabulary")
	}
}

func TestRebuildIndex_Errors(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		svc := New(&mockIndex{}, &mockEmbedder{}, nil, "menu", zap.NewNop())
		src := &mockSource{err: fmt.Errorf("read: %w", domain.ErrInvalidCatalog)}

		if _, err := svc.RebuildIndex(context.Background(), src, ""); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("missing item id", func(t *testing.T) {
		idx := &mockIndex{rebuildFn: func(context.Context, string, []domdoc.Document, index.Progress) (int, error) {
			t.Fatal("index must not be touched")
			return 0, nil
		}}
		svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())
		src := &mockSource{items: []domcat.Item{{domcat.KeyItemName: "nameless"}}}

		if _, err := svc.RebuildIndex(context.Background(), src, ""); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("index", func(t *testing.T) {
		idx := &mockIndex{rebuildFn: func(context.Context, string, []domdoc.Document, index.Progress) (int, error) {
			return 0, fmt.Errorf("boom: %w", domain.ErrIndexUnavailable)
		}}
		svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

		_, err := svc.RebuildIndex(context.Background(), &mockSource{items: testItems()}, "")
		if !errors.Is(err, domain.ErrIndexUnavailable) {
			t.Fatalf("expected ErrIndexUnavailable, got %v", err)
		}
		if !svc.Vocabulary().IsEmpty() {
			t.Error("failed rebuild must not change the vocabulary")
		}
	})
}

func TestLoadVocabulary(t *testing.T) {
	svc := New(&mockIndex{}, &mockEmbedder{}, nil, "menu", zap.NewNop())

	if err := svc.LoadVocabulary(context.Background(), &mockSource{items: testItems()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Vocabulary().Locations; len(got) != 2 || got[0] != "Bangalore" {
		t.Errorf("locations = %v", got)
	}
}

func TestLoadVocabulary_EmptyCatalogWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := New(&mockIndex{}, &mockEmbedder{}, nil, "menu", zap.New(core))

	if err := svc.LoadVocabulary(context.Background(), &mockSource{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("Catalog vocabulary is empty").Len() != 1 {
		t.Errorf("expected a warning, got %v", logs.All())
	}

	if err := svc.LoadVocabulary(context.Background(), &mockSource{items: testItems()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("populated catalog must not warn, got %d entries", logs.Len())
	}
}

func TestItem(t *testing.T) {
	idx := &mockIndex{docFn: func(_ context.Context, _ string, itemID string) (domdoc.Document, error) {
		if itemID != "7" {
			return domdoc.Document{}, domain.ErrNotFound
		}
		return domdoc.New(domdoc.IDFor(itemID), "Veg Biryani.", domdoc.Metadata{ItemID: itemID})
	}}
	svc := New(idx, &mockEmbedder{}, nil, "menu", zap.NewNop())

	doc, err := svc.Item(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "item_7" || idx.lastCollection != "menu" {
		t.Errorf("doc %s from %s", doc.ID(), idx.lastCollection)
	}

	if _, err := svc.Item(context.Background(), "8"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
