// Package result holds what a recommendation query produces: raw neighbour
// candidates from the index and the ranked recommendations built from them.
package result

import "github.com/kailas-cloud/menurank/internal/domain/document"

// Candidate is one nearest-neighbour hit. Similarity is 1 minus the cosine distance.
type Candidate struct {
	ID         string
	Metadata   document.Metadata
	Similarity float64
}

// NewCandidate creates a candidate.
func NewCandidate(id string, meta document.Metadata, similarity float64) Candidate {
	return Candidate{ID: id, Metadata: meta, Similarity: similarity}
}

// Reason tags, in the order ranking appends them.
const (
	TagLocationMatch = "location_match"
	TagVegMatch      = "veg_match"
	TagSpiceMatch    = "spice_match"
	TagCuisineMatch  = "cuisine_match"
	TagOverBudget    = "over_budget"
	TagWithinBudget  = "within_budget"
	TagWithinTime    = "within_time"
)

// Recommendation is a ranked, explainable result. Built per query and never persisted.
type Recommendation struct {
	ItemID              string   `json:"item_id"`
	RestaurantID        string   `json:"restaurant_id"`
	ItemName            string   `json:"item_name"`
	RestaurantName      string   `json:"restaurant_name"`
	CuisineType         string   `json:"cuisine_type"`
	Location            string   `json:"location"`
	Price               float64  `json:"price"`
	Veg                 *bool    `json:"veg"`
	SpiceLevel          string   `json:"spice_level"`
	DeliveryTimeMinutes int      `json:"delivery_time_minutes"`
	AverageRating       float64  `json:"average_rating"`
	PopularityScore     int      `json:"popularity_score"`
	Similarity          float64  `json:"similarity"`
	FinalScore          float64  `json:"final_score"`
	ReasonTags          []string `json:"reason_tags"`
}

// HasTag reports whether tag is among the reason tags.
func (r Recommendation) HasTag(tag string) bool {
	for _, t := range r.ReasonTags {
		if t == tag {
			return true
		}
	}
	return false
}

// NewRecommendation copies the display fields of c.
func NewRecommendation(c Candidate, finalScore float64, tags []string) Recommendation {
	m := c.Metadata
	if tags == nil {
		tags = []string{}
	}
	return Recommendation{
		ItemID:              m.ItemID,
		RestaurantID:        m.RestaurantID,
		ItemName:            m.ItemName,
		RestaurantName:      m.RestaurantName,
		CuisineType:         m.CuisineType,
		Location:            m.Location,
		Price:               m.Price,
		Veg:                 m.Veg,
		SpiceLevel:          m.SpiceLevel,
		DeliveryTimeMinutes: m.DeliveryTimeMinutes,
		AverageRating:       m.AverageRating,
		PopularityScore:     m.PopularityScore,
		Similarity:          c.Similarity,
		FinalScore:          finalScore,
		ReasonTags:          tags,
	}
}
