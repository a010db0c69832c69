// Package ranking filters and scores nearest-neighbour candidates.
package ranking

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
)

// Score weights. Semantic similarity dominates; delivery time is inverted.
const (
	WeightSimilarity   = 0.70
	WeightDeliveryTime = 0.15
	WeightRating       = 0.10
	WeightPopularity   = 0.05

	// MaxBudgetPenalty caps the over-budget deduction.
	MaxBudgetPenalty = 0.25
)

type scored struct {
	rec   result.Recommendation
	score float64
}

// Outcome is a ranking result together with how many candidates passed the hard filters.
type Outcome struct {
	Recommendations []result.Recommendation
	Survivors       int
}

// Rank applies hard filters, the soft budget penalty and the composite score, then
// returns at most topK recommendations ordered by score. Ties keep candidate order.
// userLocation, when non-empty, overrides filters.Location.
func Rank(cands []result.Candidate, filters filter.QueryFilters, userLocation string, topK int) []result.Recommendation {
	return RankOutcome(cands, filters, userLocation, topK).Recommendations
}

// RankOutcome is Rank that also reports the number of filter survivors before truncation.
func RankOutcome(cands []result.Candidate, filters filter.QueryFilters, userLocation string, topK int) Outcome {
	out := make([]result.Recommendation, 0)
	if len(cands) == 0 || topK <= 0 {
		return Outcome{Recommendations: out}
	}
	filters = filters.Normalize()

	dt := newBounds(cands, func(c result.Candidate) float64 { return float64(c.Metadata.DeliveryTimeMinutes) })
	rating := newBounds(cands, func(c result.Candidate) float64 { return c.Metadata.AverageRating })
	pop := newBounds(cands, func(c result.Candidate) float64 { return float64(c.Metadata.PopularityScore) })

	location := strings.TrimSpace(userLocation)
	if location == "" && filters.Location != nil {
		location = *filters.Location
	}

	survivors := make([]scored, 0, len(cands))
	for _, c := range cands {
		tags, penalty, ok := evaluate(c, filters, location)
		if !ok {
			continue
		}
		m := c.Metadata
		final := WeightSimilarity*c.Similarity +
			WeightDeliveryTime*(1-dt.norm(float64(m.DeliveryTimeMinutes))) +
			WeightRating*rating.norm(m.AverageRating) +
			WeightPopularity*pop.norm(float64(m.PopularityScore)) -
			penalty
		survivors = append(survivors, scored{rec: result.NewRecommendation(c, final, tags), score: final})
	}

	sort.SliceStable(survivors, func(i, j int) bool { return survivors[i].score > survivors[j].score })

	n := len(survivors)
	if len(survivors) > topK {
		survivors = survivors[:topK]
	}
	for _, s := range survivors {
		out = append(out, s.rec)
	}
	return Outcome{Recommendations: out, Survivors: n}
}

// evaluate runs the filters in their fixed order and returns the reason tags,
// the budget penalty and whether the candidate survives.
func evaluate(c result.Candidate, f filter.QueryFilters, location string) ([]string, float64, bool) {
	m := c.Metadata
	tags := make([]string, 0, 5)

	if f.RestaurantName != nil && !sameFold(m.RestaurantName, *f.RestaurantName) {
		return nil, 0, false
	}

	if location != "" {
		if !sameFold(m.Location, location) {
			return nil, 0, false
		}
		tags = append(tags, result.TagLocationMatch)
	}

	// Unknown veg status never blocks.
	if f.Veg != nil {
		if m.Veg != nil && *m.Veg != *f.Veg {
			return nil, 0, false
		}
		tags = append(tags, result.TagVegMatch)
	}

	if f.SpiceLevel != nil {
		if !sameFold(m.SpiceLevel, string(*f.SpiceLevel)) {
			return nil, 0, false
		}
		tags = append(tags, result.TagSpiceMatch)
	}

	if f.CuisineType != nil {
		if !sameFold(m.CuisineType, *f.CuisineType) {
			return nil, 0, false
		}
		tags = append(tags, result.TagCuisineMatch)
	}

	var penalty float64
	if f.MaxPrice != nil {
		maxPrice := *f.MaxPrice
		if m.Price > maxPrice {
			penalty = BudgetPenalty(m.Price, maxPrice)
			tags = append(tags, result.TagOverBudget)
		} else {
			tags = append(tags, result.TagWithinBudget)
		}
	}

	if f.MaxDeliveryTimeMinutes != nil {
		if m.DeliveryTimeMinutes > *f.MaxDeliveryTimeMinutes {
			return nil, 0, false
		}
		tags = append(tags, result.TagWithinTime)
	}

	return tags, penalty, true
}

// BudgetPenalty is the soft deduction for an item priced above maxPrice.
func BudgetPenalty(price, maxPrice float64) float64 {
	if price <= maxPrice {
		return 0
	}
	return MaxBudgetPenalty * min(1, (price-maxPrice)/max(maxPrice, 1))
}

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
