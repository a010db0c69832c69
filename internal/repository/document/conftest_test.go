package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn   func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testGen() domain.Generation {
	return domain.NewGeneration("menu", "g1")
}

func testEntry(t *testing.T, id string) Entry {
	t.Helper()
	doc, err := domdoc.New(id, "Paneer Tikka. Smoky cottage cheese.", domdoc.Metadata{
		ItemID:              id[len(domdoc.IDPrefix):],
		ItemName:            "Paneer Tikka",
		Price:               240,
		Veg:                 domdoc.Bool(true),
		Location:            "Indiranagar",
		DeliveryTimeMinutes: 30,
	})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return Entry{Document: doc, Vector: []float32{0.6, 0.8}}
}
