// Package extraction turns a free-text request into structured query filters.
package extraction

import (
	"context"

	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

// Extractor derives filters from a user request. Failures wrap domain.ErrExtractionFailed.
type Extractor interface {
	Extract(ctx context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error)
}
