// Package schema defines how a menu document is laid out as a flat hash.
package schema

import (
	"strconv"

	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
)

// Hash field names. Metadata fields keep their catalog names.
const (
	FieldText   = "__text"
	FieldVector = "__vector"
	// VectorAlias is the name the vector field is queried by.
	VectorAlias = "vector"

	FieldItemID              = "item_id"
	FieldRestaurantID        = "restaurant_id"
	FieldItemName            = "item_name"
	FieldCategory            = "category"
	FieldPrice               = "price"
	FieldVeg                 = "veg"
	FieldSpiceLevel          = "spice_level"
	FieldCalories            = "calories"
	FieldChefSpecial         = "is_chef_special"
	FieldRestaurantName      = "restaurant_name"
	FieldCuisineType         = "cuisine_type"
	FieldAverageRating       = "average_rating"
	FieldPriceRange          = "price_range"
	FieldLocation            = "location"
	FieldDeliveryTimeMinutes = "delivery_time_minutes"
	FieldPureVeg             = "is_pure_veg"
	FieldPopularityScore     = "popularity_score"
)

// MetadataFields lists every metadata field, in storage order.
var MetadataFields = []string{
	FieldItemID, FieldRestaurantID, FieldItemName, FieldCategory, FieldPrice,
	FieldVeg, FieldSpiceLevel, FieldCalories, FieldChefSpecial, FieldRestaurantName,
	FieldCuisineType, FieldAverageRating, FieldPriceRange, FieldLocation,
	FieldDeliveryTimeMinutes, FieldPureVeg, FieldPopularityScore,
}

// EncodeMetadata flattens metadata into hash fields. Unknown booleans are omitted.
func EncodeMetadata(m domdoc.Metadata) map[string]string {
	h := map[string]string{
		FieldItemID:              m.ItemID,
		FieldRestaurantID:        m.RestaurantID,
		FieldItemName:            m.ItemName,
		FieldCategory:            m.Category,
		FieldPrice:               formatFloat(m.Price),
		FieldSpiceLevel:          m.SpiceLevel,
		FieldCalories:            strconv.Itoa(m.Calories),
		FieldChefSpecial:         formatBool(m.ChefSpecial),
		FieldRestaurantName:      m.RestaurantName,
		FieldCuisineType:         m.CuisineType,
		FieldAverageRating:       formatFloat(m.AverageRating),
		FieldPriceRange:          m.PriceRange,
		FieldLocation:            m.Location,
		FieldDeliveryTimeMinutes: strconv.Itoa(m.DeliveryTimeMinutes),
		FieldPopularityScore:     strconv.Itoa(m.PopularityScore),
	}
	if m.Veg != nil {
		h[FieldVeg] = formatBool(*m.Veg)
	}
	if m.PureVeg != nil {
		h[FieldPureVeg] = formatBool(*m.PureVeg)
	}
	return h
}

// DecodeMetadata rebuilds metadata from hash fields, applying the catalog defaults
// to anything missing or malformed.
func DecodeMetadata(h map[string]string) domdoc.Metadata {
	return domdoc.Metadata{
		ItemID:              h[FieldItemID],
		RestaurantID:        h[FieldRestaurantID],
		ItemName:            h[FieldItemName],
		Category:            h[FieldCategory],
		Price:               parseFloat(h, FieldPrice, domdoc.DefaultPrice),
		Veg:                 parseBool(h, FieldVeg),
		SpiceLevel:          h[FieldSpiceLevel],
		Calories:            parseInt(h, FieldCalories, 0),
		ChefSpecial:         h[FieldChefSpecial] == "1",
		RestaurantName:      h[FieldRestaurantName],
		CuisineType:         h[FieldCuisineType],
		AverageRating:       parseFloat(h, FieldAverageRating, domdoc.DefaultRating),
		PriceRange:          h[FieldPriceRange],
		Location:            h[FieldLocation],
		DeliveryTimeMinutes: parseInt(h, FieldDeliveryTimeMinutes, domdoc.DefaultDeliveryTimeMinutes),
		PureVeg:             parseBool(h, FieldPureVeg),
		PopularityScore:     parseInt(h, FieldPopularityScore, domdoc.DefaultPopularity),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFloat(h map[string]string, key string, def float64) float64 {
	v, ok := h[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func parseInt(h map[string]string, key string, def int) int {
	v, ok := h[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseBool(h map[string]string, key string) *bool {
	switch h[key] {
	case "1":
		return domdoc.Bool(true)
	case "0":
		return domdoc.Bool(false)
	default:
		return nil
	}
}
