package recommend

import (
	"context"

	domcat "github.com/kailas-cloud/menurank/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
	"github.com/kailas-cloud/menurank/internal/usecase/index"
)

// Source loads the joined catalog.
type Source interface {
	Load(ctx context.Context) ([]domcat.Item, error)
}

// Index is the vector collection the service reads from and rebuilds.
type Index interface {
	Rebuild(ctx context.Context, collection string, docs []domdoc.Document, progress index.Progress) (int, error)
	Query(ctx context.Context, collection string, vector []float32, k int) ([]result.Candidate, error)
	Document(ctx context.Context, collection, itemID string) (domdoc.Document, error)
}
