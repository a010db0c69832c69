// Package filter holds the structured constraints extracted from a user request.
package filter

import (
	"fmt"
	"strings"
)

// SpiceLevel is one of mild, medium or spicy.
type SpiceLevel string

// Spice levels.
const (
	SpiceMild   SpiceLevel = "mild"
	SpiceMedium SpiceLevel = "medium"
	SpiceSpicy  SpiceLevel = "spicy"
)

// ParseSpiceLevel normalises s and reports whether it names a known level.
func ParseSpiceLevel(s string) (SpiceLevel, bool) {
	switch lvl := SpiceLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case SpiceMild, SpiceMedium, SpiceSpicy:
		return lvl, true
	default:
		return "", false
	}
}

// QueryFilters are optional constraints on recommendations. A nil field means "no constraint".
type QueryFilters struct {
	Veg                    *bool       `json:"veg"`
	SpiceLevel             *SpiceLevel `json:"spice_level"`
	MaxPrice               *float64    `json:"max_price"`
	MaxDeliveryTimeMinutes *int        `json:"max_delivery_time_minutes"`
	RestaurantName         *string     `json:"restaurant_name"`
	Location               *string     `json:"location"`
	CuisineType            *string     `json:"cuisine_type"`
}

// Normalize trims string fields and clears blank ones so "" never acts as a constraint.
func (f QueryFilters) Normalize() QueryFilters {
	f.RestaurantName = trimOrNil(f.RestaurantName)
	f.Location = trimOrNil(f.Location)
	f.CuisineType = trimOrNil(f.CuisineType)
	if f.SpiceLevel != nil {
		if lvl, ok := ParseSpiceLevel(string(*f.SpiceLevel)); ok {
			f.SpiceLevel = &lvl
		} else {
			f.SpiceLevel = nil
		}
	}
	return f
}

// Validate rejects values that cannot be satisfied by any item.
func (f QueryFilters) Validate() error {
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("max_price must be non-negative")
	}
	if f.MaxDeliveryTimeMinutes != nil && *f.MaxDeliveryTimeMinutes < 0 {
		return fmt.Errorf("max_delivery_time_minutes must be non-negative")
	}
	return nil
}

// IsEmpty reports whether no constraint is set.
func (f QueryFilters) IsEmpty() bool {
	return f.Veg == nil && f.SpiceLevel == nil && f.MaxPrice == nil &&
		f.MaxDeliveryTimeMinutes == nil && f.RestaurantName == nil &&
		f.Location == nil && f.CuisineType == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
