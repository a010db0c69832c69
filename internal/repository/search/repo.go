package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
	"github.com/kailas-cloud/menurank/internal/repository/schema"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs nearest-neighbour queries against a generation.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// returnFields are the hash fields fetched with every hit.
var returnFields = schema.MetadataFields

// SearchKNN returns up to k candidates nearest to vector, closest first.
// Similarity is 1 minus the cosine distance and is not clamped.
// A missing index yields domain.ErrNotFound.
func (r *Repo) SearchKNN(
	ctx context.Context, gen domain.Generation, vector []float32, k int,
) ([]result.Candidate, error) {
	if k <= 0 || len(vector) == 0 {
		return []result.Candidate{}, nil
	}

	q := &db.KNNQuery{
		IndexName:    gen.IndexName(),
		VectorField:  schema.VectorAlias,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("search knn %s: %w", gen.IndexName(), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("search knn %s: %w", gen.IndexName(), err)
	}

	return parseKNNResults(sr, gen), nil
}

// parseKNNResults converts db.SearchResult into candidates, keeping the store's order.
func parseKNNResults(sr *db.SearchResult, gen domain.Generation) []result.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Candidate{}
	}

	prefix := gen.DocPrefix()
	out := make([]result.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		out = append(out, result.NewCandidate(id, schema.DecodeMetadata(entry.Fields), 1-entry.Score))
	}
	return out
}
