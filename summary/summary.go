// Package summary derives a short human-readable business summary from
// structured attributes, ratings and review volume.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"hidden-gems/category"
)

// featurePhrase pairs an attribute key with its summary clause. The list is
// walked in this order, not attribute-map iteration order, so output stays
// deterministic regardless of how the caller built the map.
type featurePhrase struct {
	key    string
	phrase string
}

var featurePhrases = []featurePhrase{
	{"caters_to_vegans", "vegan options"},
	{"good_for_groups", "great for groups"},
	{"good_for_kids", "family-friendly"},
	{"outdoor_seating", "outdoor seating"},
	{"wifi", "WiFi available"},
	{"parking", "has parking"},
	{"wheelchair_accessible", "wheelchair accessible"},
	{"dogs_allowed", "dogs welcome"},
}

// Generate builds a one-sentence summary from independent signal fragments,
// each contributing at most one clause, joined with commas. When no signal
// produces a clause it falls back to a generic templated sentence. It never
// fails; missing or unknown inputs simply contribute nothing.
func Generate(name string, cat category.Category, priceRange string, attrs map[string]any, rating float64, reviewCount int) string {
	var parts []string

	switch {
	case rating >= 4.5:
		parts = append(parts, "Highly-rated")
	case rating >= 4.0:
		parts = append(parts, "Well-reviewed")
	case rating >= 3.5:
		parts = append(parts, "Popular")
	}

	switch strings.Count(priceRange, "$") {
	case 0:
	case 1:
		parts = append(parts, "budget-friendly")
	case 2:
		parts = append(parts, "moderate pricing")
	default:
		parts = append(parts, "upscale")
	}

	for _, fp := range featurePhrases {
		if Truthy(attrs[fp.key]) {
			parts = append(parts, fp.phrase)
		}
	}

	switch {
	case reviewCount > 500:
		parts = append(parts, "very popular")
	case reviewCount > 200:
		parts = append(parts, "well-established")
	}

	if len(parts) > 0 {
		return fmt.Sprintf("%s - %s.", name, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s - A %s business in Richmond with %d reviews and %s rating.",
		name, strings.ToLower(string(cat)), reviewCount, strconv.FormatFloat(rating, 'f', 1, 64))
}

// Truthy reports whether an attribute value counts as present and set.
// Source attribute maps mix booleans, strings and numbers.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false") && t != "0"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
