package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

// ParseFilters validates an extraction service reply of the form {"filters": {...}}.
// Unknown keys are ignored and values of the wrong type become unset.
// Only malformed JSON is an error.
func ParseFilters(data []byte) (filter.QueryFilters, error) {
	var envelope struct {
		Filters map[string]json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal(stripFences(data), &envelope); err != nil {
		return filter.QueryFilters{}, fmt.Errorf("decode filters: %w: %w", domain.ErrExtractionFailed, err)
	}

	raw := envelope.Filters
	var f filter.QueryFilters

	if b, ok := decodeBool(raw["veg"]); ok {
		f.Veg = &b
	}
	if s, ok := decodeString(raw["spice_level"]); ok {
		if lvl, ok := filter.ParseSpiceLevel(s); ok {
			f.SpiceLevel = &lvl
		}
	}
	if n, ok := decodeInt(raw["max_price"]); ok {
		price := float64(n)
		f.MaxPrice = &price
	}
	if n, ok := decodeInt(raw["max_delivery_time_minutes"]); ok {
		f.MaxDeliveryTimeMinutes = &n
	}
	if s, ok := decodeString(raw["restaurant_name"]); ok {
		f.RestaurantName = &s
	}
	if s, ok := decodeString(raw["location"]); ok {
		f.Location = &s
	}
	if s, ok := decodeString(raw["cuisine_type"]); ok {
		f.CuisineType = &s
	}

	return f.Normalize(), nil
}

// stripFences removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripFences(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte("```"))
	if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
		data = data[nl+1:]
	}
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
	return bytes.TrimSpace(data)
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// decodeInt accepts JSON numbers (truncated toward zero) and integer strings.
// Negative values are treated as unset.
func decodeInt(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
