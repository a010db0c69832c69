package index

import (
	"context"

	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
)

// Collections manages physical generations and the active pointer of a collection.
type Collections interface {
	Active(ctx context.Context, collection string) (domain.Generation, bool, error)
	Create(ctx context.Context, gen domain.Generation, dim int) error
	Activate(ctx context.Context, gen domain.Generation) (domain.Generation, error)
	ActivateIfAbsent(ctx context.Context, gen domain.Generation) (bool, error)
	Drop(ctx context.Context, gen domain.Generation) error
	Exists(ctx context.Context, gen domain.Generation) (bool, error)
	Count(ctx context.Context, gen domain.Generation) (int, error)
}

// Documents writes embedded documents into a generation and reads them back by id.
type Documents interface {
	BatchInsert(ctx context.Context, gen domain.Generation, docs []domdoc.Document, vectors [][]float32) error
	Get(ctx context.Context, gen domain.Generation, id string) (domdoc.Document, error)
}

// Searcher runs nearest-neighbour queries against a generation.
type Searcher interface {
	SearchKNN(ctx context.Context, gen domain.Generation, vector []float32, k int) ([]result.Candidate, error)
}

// Progress is called after every inserted batch with the number of documents
// written so far and the total. It runs on the rebuild's insert goroutine.
type Progress func(done, total int)
