// Package recommend ties catalog loading, the vector index, filter extraction
// and ranking into the two entry points of the engine.
package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	domcat "github.com/kailas-cloud/menurank/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/logger"
	"github.com/kailas-cloud/menurank/internal/metrics"
	"github.com/kailas-cloud/menurank/internal/usecase/extraction"
	"github.com/kailas-cloud/menurank/internal/usecase/index"
	"github.com/kailas-cloud/menurank/internal/usecase/ranking"
)

// Service answers recommendation requests against one collection.
type Service struct {
	index      Index
	embed      domain.Embedder
	extractor  extraction.Extractor
	collection string
	logger     *zap.Logger

	mu    sync.RWMutex
	vocab domcat.Vocabulary
}

// New creates a recommendation service. embed vectorizes queries; extractor may be nil,
// in which case requests without explicit filters run unfiltered.
func New(idx Index, embed domain.Embedder, extractor extraction.Extractor, collection string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		index:      idx,
		embed:      embed,
		extractor:  extractor,
		collection: collection,
		logger:     log,
	}
}

// Collection returns the name of the served collection.
func (s *Service) Collection() string { return s.collection }

// RebuildOption customises a rebuild.
type RebuildOption func(*rebuildOptions)

type rebuildOptions struct {
	progress index.Progress
}

// WithProgress reports inserted documents after every batch.
func WithProgress(p index.Progress) RebuildOption {
	return func(o *rebuildOptions) { o.progress = p }
}

// RebuildIndex loads the catalog, builds documents and replaces the collection contents.
// An empty collection name rebuilds the served collection.
func (s *Service) RebuildIndex(
	ctx context.Context, source Source, collection string, opts ...RebuildOption,
) (int, error) {
	var o rebuildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if collection == "" {
		collection = s.collection
	}

	items, err := source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	docs, err := domdoc.Build(items)
	if err != nil {
		return 0, fmt.Errorf("build documents: %w", err)
	}

	n, err := s.index.Rebuild(ctx, collection, docs, o.progress)
	if err != nil {
		return 0, fmt.Errorf("rebuild %s: %w", collection, err)
	}

	if collection == s.collection {
		s.SetVocabulary(domcat.BuildVocabulary(items))
	}
	logger.FromContextOr(ctx, s.logger).Info("Index rebuilt",
		zap.String("collection", collection),
		zap.Int("items", len(items)),
		zap.Int("indexed", n),
	)
	return n, nil
}

// LoadVocabulary reads the catalog only to learn the extraction vocabulary.
func (s *Service) LoadVocabulary(ctx context.Context, source Source) error {
	items, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	vocab := domcat.BuildVocabulary(items)
	if vocab.IsEmpty() {
		logger.FromContextOr(ctx, s.logger).Warn("Catalog vocabulary is empty",
			zap.Int("items", len(items)))
	}
	s.SetVocabulary(vocab)
	return nil
}

// SetVocabulary replaces the extraction vocabulary.
func (s *Service) SetVocabulary(v domcat.Vocabulary) {
	s.mu.Lock()
	s.vocab = v
	s.mu.Unlock()
}

// Vocabulary returns the current extraction vocabulary.
func (s *Service) Vocabulary() domcat.Vocabulary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab
}

// Item returns the indexed document of a catalog item in the served collection.
func (s *Service) Item(ctx context.Context, itemID string) (domdoc.Document, error) {
	doc, err := s.index.Document(ctx, s.collection, itemID)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("lookup item: %w", err)
	}
	return doc, nil
}

// GetRecommendations embeds the query, fetches nearest candidates and ranks them.
// An empty Result (NoResults) is a normal outcome.
func (s *Service) GetRecommendations(ctx context.Context, req Request) (Result, error) {
	req, err := req.normalize()
	if err != nil {
		return Result{}, err
	}
	log := logger.FromContextOr(ctx, s.logger)

	filters, extracted, err := s.filters(ctx, req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	emb, err := s.embed.Embed(ctx, req.Query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	cands, err := s.index.Query(ctx, s.collection, emb.Embedding, req.CandidateK)
	if err != nil {
		return Result{}, fmt.Errorf("query index: %w", err)
	}

	outcome := ranking.RankOutcome(cands, filters, req.UserLocation, req.TopK)
	metrics.RankingCandidates.Observe(float64(len(cands)))
	metrics.RankingSurvivors.Observe(float64(outcome.Survivors))

	log.Debug("Recommendations ranked",
		zap.Bool("filtered", !filters.IsEmpty()),
		zap.Int("candidates", len(cands)),
		zap.Int("survivors", outcome.Survivors),
		zap.Int("returned", len(outcome.Recommendations)),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{
		Query:           req.Query,
		Filters:         filters,
		Extracted:       extracted,
		Candidates:      len(cands),
		Recommendations: outcome.Recommendations,
	}, nil
}

func (s *Service) filters(ctx context.Context, req Request) (filter.QueryFilters, bool, error) {
	if req.Filters != nil {
		return *req.Filters, false, nil
	}
	if s.extractor == nil {
		return filter.QueryFilters{}, false, nil
	}

	f, err := s.extractor.Extract(ctx, req.Query, s.Vocabulary())
	if err != nil {
		return filter.QueryFilters{}, false, fmt.Errorf("extract filters: %w", err)
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return filter.QueryFilters{}, false, fmt.Errorf("extracted filters: %w: %w", domain.ErrExtractionFailed, err)
	}
	return f, true, nil
}
