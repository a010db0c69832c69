package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Entry is a document together with its embedding.
type Entry struct {
	Document domdoc.Document
	Vector   []float32
}

// Repo writes and reads menu documents of a generation.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// BatchInsert writes docs with their vectors into gen in one pipelined round trip.
// vectors[i] is the embedding of docs[i].
func (r *Repo) BatchInsert(
	ctx context.Context, gen domain.Generation, docs []domdoc.Document, vectors [][]float32,
) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%d documents with %d vectors: %w", len(docs), len(vectors), domain.ErrVectorDimMismatch)
	}
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("document %s has no embedding: %w", doc.ID(), domain.ErrVectorDimMismatch)
		}
		items[i] = db.HashSetItem{
			Key:    gen.DocKey(doc.ID()),
			Fields: buildHashFields(Entry{Document: doc, Vector: vectors[i]}),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch of %d into %s: %w", len(items), gen.DocPrefix(), err)
	}
	return nil
}

// Get returns a stored document. The stored embedding must decode for the document to count as present.
func (r *Repo) Get(ctx context.Context, gen domain.Generation, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, gen.DocKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrNotFound
		}
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", gen.DocKey(id), err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrNotFound
	}
	e, err := parseHashFields(id, m)
	if err != nil {
		return domdoc.Document{}, err
	}
	return e.Document, nil
}
