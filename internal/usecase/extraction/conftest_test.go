package extraction

import (
	"context"

	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

type mockExtractor struct {
	extractFn func(ctx context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error)
	calls     int
}

func (m *mockExtractor) Extract(ctx context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error) {
	m.calls++
	return m.extractFn(ctx, query, vocab)
}

func testVocab() catalog.Vocabulary {
	return catalog.Vocabulary{
		Restaurants: []string{"Dosa Corner", "Spice Route", "Spice Route Express"},
		Locations:   []string{"Bangalore", "Mumbai", "Navi Mumbai"},
		Cuisines:    []string{"Italian", "North Indian", "South Indian"},
	}
}
