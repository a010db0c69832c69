package extraction

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &mockExtractor{extractFn: func(context.Context, string, catalog.Vocabulary) (filter.QueryFilters, error) {
		return filter.QueryFilters{Veg: filter.Ptr(true)}, nil
	}}
	fb := &mockExtractor{extractFn: func(context.Context, string, catalog.Vocabulary) (filter.QueryFilters, error) {
		t.Fatal("fallback must not be called")
		return filter.QueryFilters{}, nil
	}}

	f, err := WithFallback(primary, fb, zap.NewNop()).Extract(context.Background(), "veg", catalog.Vocabulary{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Veg == nil || !*f.Veg {
		t.Errorf("veg = %v, want true", f.Veg)
	}
}

func TestFallback_ExtractionFailureUsesFallback(t *testing.T) {
	primary := &mockExtractor{extractFn: func(context.Context, string, catalog.Vocabulary) (filter.QueryFilters, error) {
		return filter.QueryFilters{}, fmt.Errorf("chat: %w", domain.ErrExtractionFailed)
	}}

	f, err := WithFallback(primary, NewRuleBased(), zap.NewNop()).
		Extract(context.Background(), "veg under 200", catalog.Vocabulary{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 200 {
		t.Errorf("max_price = %v, want 200 from fallback", f.MaxPrice)
	}
}

func TestFallback_OtherErrorsPropagate(t *testing.T) {
	primary := &mockExtractor{extractFn: func(context.Context, string, catalog.Vocabulary) (filter.QueryFilters, error) {
		return filter.QueryFilters{}, context.Canceled
	}}
	fb := &mockExtractor{extractFn: func(context.Context, string, catalog.Vocabulary) (filter.QueryFilters, error) {
		return filter.QueryFilters{}, nil
	}}

	_, err := WithFallback(primary, fb, zap.NewNop()).Extract(context.Background(), "q", catalog.Vocabulary{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fb.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fb.calls)
	}
}

func TestFallback_NilPrimary(t *testing.T) {
	f, err := WithFallback(nil, NewRuleBased(), nil).Extract(context.Background(), "spicy", catalog.Vocabulary{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.SpiceLevel == nil || *f.SpiceLevel != filter.SpiceSpicy {
		t.Errorf("spice = %v, want spicy", f.SpiceLevel)
	}
}
