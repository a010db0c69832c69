package chi

import (
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeInvalidCatalog         ErrorCode = "invalid_catalog"
	ErrorCodeIndexUnavailable       ErrorCode = "index_unavailable"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeExtractionFailed       ErrorCode = "extraction_failed"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// RecommendationRequest is the body of POST /v1/recommendations.
// Omitting filters asks the server to extract them from the query.
type RecommendationRequest struct {
	Query        string               `json:"query"`
	Filters      *filter.QueryFilters `json:"filters,omitempty"`
	TopK         *int                 `json:"top_k,omitempty"`
	CandidateK   *int                 `json:"candidate_k,omitempty"`
	UserLocation *string              `json:"user_location,omitempty"`
}

// RecommendationResponse lists ranked items. NoResults distinguishes "nothing matched" from failure.
type RecommendationResponse struct {
	Query            string                  `json:"query"`
	Filters          filter.QueryFilters     `json:"filters"`
	FiltersExtracted bool                    `json:"filters_extracted"`
	Candidates       int                     `json:"candidates"`
	NoResults        bool                    `json:"no_results"`
	Items            []result.Recommendation `json:"items"`
}

// ItemResponse is an indexed menu item as stored in the served collection.
type ItemResponse struct {
	ID                  string  `json:"id"`
	Text                string  `json:"text"`
	ItemID              string  `json:"item_id"`
	RestaurantID        string  `json:"restaurant_id"`
	ItemName            string  `json:"item_name"`
	Category            string  `json:"category"`
	Price               float64 `json:"price"`
	Veg                 *bool   `json:"veg"`
	SpiceLevel          string  `json:"spice_level"`
	Calories            int     `json:"calories"`
	ChefSpecial         bool    `json:"chef_special"`
	RestaurantName      string  `json:"restaurant_name"`
	CuisineType         string  `json:"cuisine_type"`
	AverageRating       float64 `json:"average_rating"`
	PriceRange          string  `json:"price_range"`
	Location            string  `json:"location"`
	DeliveryTimeMinutes int     `json:"delivery_time_minutes"`
	PureVeg             *bool   `json:"pure_veg"`
	PopularityScore     int     `json:"popularity_score"`
}

// RebuildRequest is the body of POST /v1/index/rebuild.
type RebuildRequest struct {
	Collection string `json:"collection,omitempty"`
}

// RebuildResponse reports how many documents were indexed.
type RebuildResponse struct {
	Collection string `json:"collection"`
	Indexed    int    `json:"indexed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
}
