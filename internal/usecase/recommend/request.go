package recommend

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
)

// Request limits.
const (
	DefaultTopK      = 5
	MaxTopK          = 50
	MinCandidateK    = 30
	candidatesPerTop = 8
)

// Request asks for recommendations. A nil Filters means "extract them from Query".
type Request struct {
	Query        string
	Filters      *filter.QueryFilters
	TopK         int
	CandidateK   int
	UserLocation string
}

// normalize applies defaults and validates. The returned request has TopK in
// [1, MaxTopK] and CandidateK >= TopK.
func (r Request) normalize() (Request, error) {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return r, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}

	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
	if r.TopK < 1 || r.TopK > MaxTopK {
		return r, fmt.Errorf("top_k must be between 1 and %d: %w", MaxTopK, domain.ErrInvalidRequest)
	}

	if r.CandidateK < 0 {
		return r, fmt.Errorf("candidate_k must be positive: %w", domain.ErrInvalidRequest)
	}
	if r.CandidateK == 0 {
		r.CandidateK = max(MinCandidateK, candidatesPerTop*r.TopK)
	}
	r.CandidateK = max(r.CandidateK, r.TopK)

	if r.Filters != nil {
		f := r.Filters.Normalize()
		if err := f.Validate(); err != nil {
			return r, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		r.Filters = &f
	}
	r.UserLocation = strings.TrimSpace(r.UserLocation)
	return r, nil
}

// Result is the outcome of a recommendation request.
type Result struct {
	Query           string
	Filters         filter.QueryFilters
	Extracted       bool
	Candidates      int
	Recommendations []result.Recommendation
}

// NoResults reports the explicit "nothing matched" outcome. It is not an error.
func (r Result) NoResults() bool {
	return len(r.Recommendations) == 0
}
