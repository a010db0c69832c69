package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
	"github.com/kailas-cloud/menurank/internal/metrics"
)

// DefaultBatchSize is the number of documents embedded and inserted together.
const DefaultBatchSize = 256

const (
	cleanupTimeout = 30 * time.Second
	dimensionProbe = "menu"
	maxRetarget    = 3
)

// Service owns the vector collections: full rebuilds and nearest-neighbour queries.
type Service struct {
	colls     Collections
	docs      Documents
	search    Searcher
	embed     domain.Embedder
	batchSize int
	dim       int
	newID     func() string
	logger    *zap.Logger

	rebuildMu sync.Mutex
}

// New creates an index service.
func New(colls Collections, docs Documents, search Searcher, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{
		colls:     colls,
		docs:      docs,
		search:    search,
		embed:     embed,
		batchSize: DefaultBatchSize,
		newID:     generationID,
		logger:    logger,
	}
}

// WithBatchSize configures the rebuild batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithDimensions fixes the vector dimension used when an empty collection has to be created.
// Without it the dimension is learned by embedding a probe text.
func (s *Service) WithDimensions(dim int) *Service {
	if dim > 0 {
		s.dim = dim
	}
	return s
}

// Rebuild replaces the contents of collection with docs and returns the number indexed.
// Documents are written into a fresh generation that becomes active only once complete,
// so concurrent queries keep seeing the previous contents. On failure the previous
// generation stays active.
func (s *Service) Rebuild(
	ctx context.Context, collection string, docs []domdoc.Document, progress Progress,
) (int, error) {
	if collection == "" {
		return 0, fmt.Errorf("collection name is required: %w", domain.ErrInvalidRequest)
	}
	if err := checkUniqueIDs(docs); err != nil {
		return 0, err
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	gen := domain.NewGeneration(collection, s.newID())
	log := s.logger.With(zap.String("collection", collection), zap.String("generation", gen.ID))
	log.Info("Rebuild started", zap.Int("documents", len(docs)), zap.Int("batch_size", s.batchSize))

	if err := s.fill(ctx, gen, docs, progress); err != nil {
		s.dropQuietly(ctx, gen, log)
		metrics.RebuildDuration.WithLabelValues(collection, "error").Observe(time.Since(start).Seconds())
		log.Error("Rebuild failed", zap.Error(err))
		return 0, err
	}

	prev, err := s.colls.Activate(ctx, gen)
	if err != nil {
		s.dropQuietly(ctx, gen, log)
		metrics.RebuildDuration.WithLabelValues(collection, "error").Observe(time.Since(start).Seconds())
		return 0, fmt.Errorf("activate %s: %w: %w", gen.ID, domain.ErrIndexUnavailable, err)
	}
	if !prev.IsZero() {
		s.dropQuietly(ctx, prev, log)
	}

	metrics.RebuildDocumentsTotal.WithLabelValues(collection).Add(float64(len(docs)))
	metrics.RebuildDuration.WithLabelValues(collection, "ok").Observe(time.Since(start).Seconds())
	log.Info("Rebuild completed",
		zap.Int("documents", len(docs)),
		zap.String("replaced", prev.ID),
		zap.Duration("duration", time.Since(start)),
	)

	return len(docs), nil
}

type embeddedBatch struct {
	docs    []domdoc.Document
	vectors [][]float32
}

// fill creates gen's index and writes docs into it. Batch N+1 is embedded while
// batch N is being inserted.
func (s *Service) fill(ctx context.Context, gen domain.Generation, docs []domdoc.Document, progress Progress) error {
	if len(docs) == 0 {
		dim, err := s.dimension(ctx)
		if err != nil {
			return err
		}
		return s.create(ctx, gen, dim)
	}

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan embeddedBatch, 1)

	g.Go(func() error {
		defer close(batches)
		for lo := 0; lo < len(docs); lo += s.batchSize {
			hi := min(lo+s.batchSize, len(docs))
			chunk := docs[lo:hi]

			texts := make([]string, len(chunk))
			for i, d := range chunk {
				texts[i] = d.Text()
			}
			res, err := domain.EmbedAll(gctx, s.embed, texts)
			if err != nil {
				return fmt.Errorf("embed documents %d-%d: %w", lo, hi, err)
			}
			if len(res.Embeddings) != len(chunk) {
				return fmt.Errorf("embed documents %d-%d: got %d embeddings: %w",
					lo, hi, len(res.Embeddings), domain.ErrEmbeddingProviderError)
			}

			select {
			case batches <- embeddedBatch{docs: chunk, vectors: res.Embeddings}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		dim := 0
		done := 0
		for b := range batches {
			if dim == 0 {
				dim = len(b.vectors[0])
				if err := s.create(gctx, gen, dim); err != nil {
					return err
				}
			}
			for i, v := range b.vectors {
				if len(v) != dim {
					return fmt.Errorf("document %s: embedding has %d dimensions, want %d: %w",
						b.docs[i].ID(), len(v), dim, domain.ErrVectorDimMismatch)
				}
			}
			if err := s.docs.BatchInsert(gctx, gen, b.docs, b.vectors); err != nil {
				return fmt.Errorf("insert documents: %w: %w", domain.ErrIndexUnavailable, err)
			}
			done += len(b.docs)
			if progress != nil {
				progress(done, len(docs))
			}
		}
		return nil
	})

	return g.Wait() //nolint:wrapcheck // goroutine errors are already wrapped
}

func (s *Service) create(ctx context.Context, gen domain.Generation, dim int) error {
	if err := s.colls.Create(ctx, gen, dim); err != nil {
		return fmt.Errorf("create collection %s: %w: %w", gen.Collection, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// dimension returns the configured vector dimension or learns it from the embedder.
func (s *Service) dimension(ctx context.Context) (int, error) {
	if s.dim > 0 {
		return s.dim, nil
	}
	res, err := s.embed.Embed(ctx, dimensionProbe)
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(res.Embedding) == 0 {
		return 0, fmt.Errorf("probe returned an empty embedding: %w", domain.ErrEmbeddingProviderError)
	}
	return len(res.Embedding), nil
}

// dropQuietly removes a generation, logging instead of failing. It survives
// cancellation of ctx so an aborted rebuild still cleans up.
func (s *Service) dropQuietly(ctx context.Context, gen domain.Generation, log *zap.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.colls.Drop(cctx, gen); err != nil {
		log.Warn("Failed to drop generation", zap.String("dropped", gen.ID), zap.Error(err))
	}
}

// Query returns up to k candidates nearest to vector in ascending distance order.
// A collection that does not exist yet is created empty and yields no candidates.
func (s *Service) Query(
	ctx context.Context, collection string, vector []float32, k int,
) ([]result.Candidate, error) {
	if k <= 0 {
		return []result.Candidate{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty: %w", domain.ErrInvalidRequest)
	}

	gen, ok, err := s.colls.Active(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	if !ok {
		if err := s.createEmpty(ctx, collection, len(vector)); err != nil {
			return nil, err
		}
		return []result.Candidate{}, nil
	}

	for attempt := 0; ; attempt++ {
		cands, err := s.search.SearchKNN(ctx, gen, vector, k)
		if err == nil {
			return cands, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("query collection %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
		}

		// A rebuild may have swapped the pointer and dropped gen after it was read.
		next, ok, aerr := s.colls.Active(ctx, collection)
		if aerr != nil || !ok || next.ID == gen.ID || attempt == maxRetarget {
			s.logger.Warn("Active generation has no index", zap.String("collection", collection),
				zap.String("generation", gen.ID))
			return []result.Candidate{}, nil
		}
		gen = next
	}
}

// createEmpty creates and activates an empty generation unless another caller got there first.
func (s *Service) createEmpty(ctx context.Context, collection string, dim int) error {
	gen := domain.NewGeneration(collection, s.newID())
	if err := s.create(ctx, gen, dim); err != nil {
		return err
	}
	won, err := s.colls.ActivateIfAbsent(ctx, gen)
	if err != nil {
		s.dropQuietly(ctx, gen, s.logger)
		return fmt.Errorf("activate empty %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	if !won {
		s.dropQuietly(ctx, gen, s.logger)
		return nil
	}
	s.logger.Info("Created empty collection", zap.String("collection", collection),
		zap.String("generation", gen.ID), zap.Int("dimensions", dim))
	return nil
}

// Count returns the number of documents in the active generation of collection.
// An active pointer whose index is gone is reported as unavailable.
func (s *Service) Count(ctx context.Context, collection string) (int, error) {
	gen, ok, err := s.colls.Active(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("open collection %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	if !ok {
		return 0, nil
	}
	exists, err := s.colls.Exists(ctx, gen)
	if err != nil {
		return 0, fmt.Errorf("open collection %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	if !exists {
		return 0, fmt.Errorf("collection %s: generation %s has no index: %w", collection, gen.ID, domain.ErrIndexUnavailable)
	}
	n, err := s.colls.Count(ctx, gen)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	return n, nil
}

// Document returns the indexed document of a catalog item from the active generation.
func (s *Service) Document(ctx context.Context, collection, itemID string) (domdoc.Document, error) {
	if itemID == "" {
		return domdoc.Document{}, fmt.Errorf("item id is required: %w", domain.ErrInvalidRequest)
	}
	gen, ok, err := s.colls.Active(ctx, collection)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("open collection %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	if !ok {
		return domdoc.Document{}, fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	doc, err := s.docs.Get(ctx, gen, domdoc.IDFor(itemID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domdoc.Document{}, fmt.Errorf("item %s: %w", itemID, err)
		}
		return domdoc.Document{}, fmt.Errorf("get item %s: %w: %w", itemID, domain.ErrIndexUnavailable, err)
	}
	return doc, nil
}

func checkUniqueIDs(docs []domdoc.Document) error {
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		if j, dup := seen[d.ID()]; dup {
			return fmt.Errorf("document %q at positions %d and %d: %w", d.ID(), j, i, domain.ErrDuplicateDocumentID)
		}
		seen[d.ID()] = i
	}
	return nil
}

func generationID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
