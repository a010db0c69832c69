package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
)

// store is the consumer interface for collection generations (ISP).
//
//nolint:interfacebloat // generation lifecycle needs pointer, index and key cleanup operations
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Swap(ctx context.Context, key string, value []byte) ([]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo manages physical generations of a collection and its active pointer.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a collection repository.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Active returns the generation the collection's pointer refers to.
// The second return value is false when the collection has never been activated.
func (r *Repo) Active(ctx context.Context, collection string) (domain.Generation, bool, error) {
	raw, err := r.store.Get(ctx, domain.ActiveKey(collection))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Generation{}, false, nil
		}
		return domain.Generation{}, false, fmt.Errorf("get active %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return domain.Generation{}, false, nil
	}
	return domain.NewGeneration(collection, string(raw)), true, nil
}

// Create creates the search index of a generation.
func (r *Repo) Create(ctx context.Context, gen domain.Generation, dim int) error {
	def, err := buildIndex(gen, dim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Exists reports whether the generation's index is present.
func (r *Repo) Exists(ctx context.Context, gen domain.Generation) (bool, error) {
	ok, err := r.store.IndexExists(ctx, gen.IndexName())
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", gen.IndexName(), err)
	}
	return ok, nil
}

// Activate points the collection at gen and returns the generation it replaced.
// The returned generation is zero when there was none.
func (r *Repo) Activate(ctx context.Context, gen domain.Generation) (domain.Generation, error) {
	prev, err := r.store.Swap(ctx, domain.ActiveKey(gen.Collection), []byte(gen.ID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Generation{}, nil
		}
		return domain.Generation{}, fmt.Errorf("swap active %s: %w", gen.Collection, err)
	}
	if len(prev) == 0 || string(prev) == gen.ID {
		return domain.Generation{}, nil
	}
	return domain.NewGeneration(gen.Collection, string(prev)), nil
}

// ActivateIfAbsent points the collection at gen only if it has no active generation.
func (r *Repo) ActivateIfAbsent(ctx context.Context, gen domain.Generation) (bool, error) {
	ok, err := r.store.SetNX(ctx, domain.ActiveKey(gen.Collection), []byte(gen.ID))
	if err != nil {
		return false, fmt.Errorf("setnx active %s: %w", gen.Collection, err)
	}
	return ok, nil
}

// Drop removes a generation: its index first, then every document key.
// A missing index is not an error.
func (r *Repo) Drop(ctx context.Context, gen domain.Generation) error {
	if err := r.store.DropIndex(ctx, gen.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", gen.IndexName(), err)
	}

	keys, err := r.store.Scan(ctx, gen.DocPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan %s: %w", gen.DocPrefix(), err)
	}
	for start := 0; start < len(keys); start += delBatch {
		end := min(start+delBatch, len(keys))
		if err := r.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("del %s: %w", gen.DocPrefix(), err)
		}
	}
	return nil
}

// Count returns the number of documents indexed under gen.
func (r *Repo) Count(ctx context.Context, gen domain.Generation) (int, error) {
	n, err := r.store.SearchCount(ctx, gen.IndexName())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", gen.IndexName(), err)
	}
	return n, nil
}

const delBatch = 500
