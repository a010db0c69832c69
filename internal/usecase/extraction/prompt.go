package extraction

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/menurank/internal/domain/catalog"
)

const promptTemplate = `You are an intelligent food assistant.

User query:
"""{{query}}"""

Return ONLY valid JSON in this exact schema:

{
  "filters": {
    "veg": true|false|null,
    "spice_level": "mild"|"medium"|"spicy"|null,
    "max_price": number|null,
    "max_delivery_time_minutes": number|null,
    "restaurant_name": string|null,
    "location": string|null,
    "cuisine_type": string|null
  }
}

Extraction guidance:
- If the user mentions a delivery time like "in 30 mins" set max_delivery_time_minutes=30.
- If the user explicitly mentions a restaurant, set restaurant_name EXACTLY as one of the known restaurants (or null).
- If the user mentions a city/location, set location EXACTLY as one of known locations (or null).
- If cuisine is implied (e.g., "Italian"), set cuisine_type EXACTLY as one of known cuisines (or null).

Known restaurants (choose exact match or null):
{{restaurants}}

Known locations (choose exact match or null):
{{locations}}

Known cuisines (choose exact match or null):
{{cuisines}}

Return JSON only. No markdown. No explanation.`

// Prompt renders the extraction instruction for a chat model.
func Prompt(query string, vocab catalog.Vocabulary) string {
	r := strings.NewReplacer(
		"{{query}}", query,
		"{{restaurants}}", jsonList(vocab.Restaurants),
		"{{locations}}", jsonList(vocab.Locations),
		"{{cuisines}}", jsonList(vocab.Cuisines),
	)
	return r.Replace(promptTemplate)
}

func jsonList(values []string) string {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
