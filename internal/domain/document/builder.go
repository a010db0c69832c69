package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/catalog"
)

// Build converts joined catalog rows into index documents, preserving order.
// Bad field values fall back to defaults; only a row without a usable item id fails the build.
func Build(items []catalog.Item) ([]Document, error) {
	docs := make([]Document, 0, len(items))
	for i, it := range items {
		meta := MetadataFrom(it)
		if meta.ItemID == "" {
			return nil, fmt.Errorf("row %d: missing %s: %w", i, catalog.KeyItemID, domain.ErrInvalidCatalog)
		}
		doc, err := New(IDFor(meta.ItemID), TextFor(it, meta), meta)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %w", i, domain.ErrInvalidCatalog, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// MetadataFrom coerces a raw catalog row into the typed metadata schema.
func MetadataFrom(it catalog.Item) Metadata {
	chef := asBool(it[catalog.KeyChefSpecial])
	return Metadata{
		ItemID:              NormalizeID(it[catalog.KeyItemID]),
		RestaurantID:        NormalizeID(it[catalog.KeyRestaurantID]),
		ItemName:            asString(it[catalog.KeyItemName]),
		Category:            asString(it[catalog.KeyCategory]),
		Price:               floatOr(it[catalog.KeyPrice], DefaultPrice),
		Veg:                 asBool(it[catalog.KeyVeg]),
		SpiceLevel:          asString(it[catalog.KeySpiceLevel]),
		Calories:            intOr(it[catalog.KeyCalories], 0),
		ChefSpecial:         chef != nil && *chef,
		RestaurantName:      asString(it[catalog.KeyRestaurant]),
		CuisineType:         asString(it[catalog.KeyCuisine]),
		AverageRating:       floatOr(it[catalog.KeyRating], DefaultRating),
		PriceRange:          asString(it[catalog.KeyPriceRange]),
		Location:            asString(it[catalog.KeyLocation]),
		DeliveryTimeMinutes: intOr(it[catalog.KeyDeliveryTime], DefaultDeliveryTimeMinutes),
		PureVeg:             asBool(it[catalog.KeyPureVeg]),
		PopularityScore:     intOr(it[catalog.KeyPopularity], DefaultPopularity),
	}
}

// TextFor renders the sentence-like blob that gets embedded.
func TextFor(it catalog.Item, meta Metadata) string {
	vegPhrase := "Non-vegetarian"
	if meta.Veg != nil && *meta.Veg {
		vegPhrase = "Vegetarian"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s. %s. ", meta.ItemName, asString(it[catalog.KeyDescription]))
	fmt.Fprintf(&b, "Category: %s. ", meta.Category)
	fmt.Fprintf(&b, "Cuisine: %s. ", meta.CuisineType)
	fmt.Fprintf(&b, "Spice: %s. ", meta.SpiceLevel)
	fmt.Fprintf(&b, "%s. ", vegPhrase)
	fmt.Fprintf(&b, "Restaurant: %s. ", meta.RestaurantName)
	fmt.Fprintf(&b, "Location: %s.", meta.Location)
	return b.String()
}
