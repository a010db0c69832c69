// Package catalog holds the joined catalog row as it arrives from the data files.
package catalog

import (
	"sort"
	"strings"
)

// Item is one menu item joined with its restaurant's attributes.
// Values are raw decoded JSON; typing happens in the document builder.
type Item map[string]any

// Keys of a joined catalog row.
const (
	KeyItemID       = "item_id"
	KeyRestaurantID = "restaurant_id"
	KeyItemName     = "item_name"
	KeyDescription  = "description"
	KeyCategory     = "category"
	KeyPrice        = "price"
	KeyVeg          = "veg"
	KeySpiceLevel   = "spice_level"
	KeyCalories     = "calories"
	KeyChefSpecial  = "is_chef_special"
	KeyRestaurant   = "restaurant_name"
	KeyCuisine      = "cuisine_type"
	KeyRating       = "average_rating"
	KeyPriceRange   = "price_range"
	KeyLocation     = "location"
	KeyDeliveryTime = "delivery_time_minutes"
	KeyPureVeg      = "is_pure_veg"
	KeyPopularity   = "popularity_score"
)

// Vocabulary lists the distinct restaurant names, locations and cuisines of a catalog.
// Extraction uses it to recognise entity mentions in free text.
type Vocabulary struct {
	Restaurants []string
	Locations   []string
	Cuisines    []string
}

// BuildVocabulary collects sorted, de-duplicated non-empty string values.
func BuildVocabulary(items []Item) Vocabulary {
	return Vocabulary{
		Restaurants: distinct(items, KeyRestaurant),
		Locations:   distinct(items, KeyLocation),
		Cuisines:    distinct(items, KeyCuisine),
	}
}

// IsEmpty reports whether the vocabulary has no entries.
func (v Vocabulary) IsEmpty() bool {
	return len(v.Restaurants) == 0 && len(v.Locations) == 0 && len(v.Cuisines) == 0
}

func distinct(items []Item, key string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, it := range items {
		s, ok := it[key].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
