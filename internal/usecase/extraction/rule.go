package extraction

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/menurank/internal/domain/catalog"
	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
)

var (
	nonVegRe = regexp.MustCompile(`(?i)\bnon[\s-]?veg(?:etarian)?\b`)
	vegRe    = regexp.MustCompile(`(?i)\b(?:veg|veggie|vegetarian|vegan)\b`)
	mildRe   = regexp.MustCompile(`(?i)\b(?:mild|not spicy|less spicy|non[\s-]?spicy)\b`)
	mediumRe = regexp.MustCompile(`(?i)\bmedium(?:[\s-]spicy)?\b`)
	spicyRe  = regexp.MustCompile(`(?i)\b(?:spicy|fiery|extra hot)\b`)

	timeRe  = regexp.MustCompile(`(?i)\b(?:in|within|under|below)\s+(\d+)\s*(?:mins?|minutes?)\b`)
	priceRe = regexp.MustCompile(`(?i)\b(?:under|below|within|less than|up to|upto)\s*(?:rs\.?|inr|₹)?\s*(\d+)(\s*(?:mins?|minutes?)\b)?`)
)

// RuleBased extracts filters with keyword rules and case-insensitive vocabulary matches.
// It is deterministic and never fails.
type RuleBased struct{}

// NewRuleBased creates the keyword extractor.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Extract implements Extractor.
func (RuleBased) Extract(_ context.Context, query string, vocab catalog.Vocabulary) (filter.QueryFilters, error) {
	var f filter.QueryFilters

	switch {
	case nonVegRe.MatchString(query):
		f.Veg = filter.Ptr(false)
	case vegRe.MatchString(query):
		f.Veg = filter.Ptr(true)
	}

	switch {
	case mildRe.MatchString(query):
		f.SpiceLevel = filter.Ptr(filter.SpiceMild)
	case mediumRe.MatchString(query):
		f.SpiceLevel = filter.Ptr(filter.SpiceMedium)
	case spicyRe.MatchString(query):
		f.SpiceLevel = filter.Ptr(filter.SpiceSpicy)
	}

	if m := timeRe.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.MaxDeliveryTimeMinutes = &n
		}
	}

	for _, m := range priceRe.FindAllStringSubmatch(query, -1) {
		if m[2] != "" {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			price := float64(n)
			f.MaxPrice = &price
			break
		}
	}

	lower := strings.ToLower(query)
	if v, ok := longestMatch(lower, vocab.Restaurants); ok {
		f.RestaurantName = &v
	}
	if v, ok := longestMatch(lower, vocab.Locations); ok {
		f.Location = &v
	}
	if v, ok := longestMatch(lower, vocab.Cuisines); ok {
		f.CuisineType = &v
	}

	return f.Normalize(), nil
}

// longestMatch returns the longest term that appears in text as a whole word sequence.
func longestMatch(text string, terms []string) (string, bool) {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, term := range sorted {
		needle := strings.ToLower(strings.TrimSpace(term))
		if needle != "" && containsWord(text, needle) {
			return term, true
		}
	}
	return "", false
}

func containsWord(text, word string) bool {
	for from := 0; from <= len(text)-len(word); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
