package extraction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

// Fallback tries the primary extractor and switches to the fallback when the
// primary reports domain.ErrExtractionFailed. Other errors, such as a
// cancelled context, are returned as is.
type Fallback struct {
	primary  Extractor
	fallback Extractor
	logger   *zap.Logger
}

// WithFallback chains two extractors. A nil primary always uses the fallback.
func WithFallback(primary, fallback Extractor, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, fallback: fallback, logger: logger}
}

// Extract implements Extractor.
func (f *Fallback) Extract(ctx context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error) {
	if f.primary == nil {
		return f.fallbackExtract(ctx, query, vocab)
	}

	filters, err := f.primary.Extract(ctx, query, vocab)
	if err == nil {
		return filters, nil
	}
	if !errors.Is(err, domain.ErrExtractionFailed) {
		return filter.QueryFilters{}, err
	}

	f.logger.Warn("filter extraction failed, using fallback extractor", zap.Error(err))
	return f.fallbackExtract(ctx, query, vocab)
}

func (f *Fallback) fallbackExtract(ctx context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error) {
	filters, err := f.fallback.Extract(ctx, query, vocab)
	if err != nil {
		return filter.QueryFilters{}, fmt.Errorf("fallback extract: %w", err)
	}
	return filters, nil
}
