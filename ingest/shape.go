package ingest

import (
	"fmt"
	"sort"
	"strings"

	"hidden-gems/category"
	"hidden-gems/summary"
	"hidden-gems/yelp"
)

// maxFieldLength bounds stored free-text fields.
const maxFieldLength = 500

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Record is one shaped business ready for reconciliation. Optional text
// fields are empty strings, never absent, so the store sees a uniform shape.
// Coordinates stay pointers: the source may not provide them, and absence
// must not clear a previously geocoded position.
type Record struct {
	Name        string
	Category    category.Category
	Description string
	Address     string
	Rating      float64
	ReviewCount int
	Phone       string
	Website     string
	YelpURL     string
	Latitude    *float64
	Longitude   *float64
	PriceRange  string
	Hours       string
	PhotoURL    string
	Attributes  string
	Summary     string
	YelpID      string
}

// Shape converts one raw source listing into a Record. It returns nil for
// listings that must never enter the pipeline: those with no usable name and
// those flagged permanently closed.
func Shape(l *yelp.Listing) *Record {
	name := strings.TrimSpace(l.Name)
	if name == "" || l.IsClosed {
		return nil
	}

	cat := category.Normalize(l.TagAliases())

	city := l.Location.City
	if city == "" {
		city = "Richmond"
	}
	state := l.Location.State
	if state == "" {
		state = "VA"
	}

	address := joinParts(l.Location.DisplayAddress)
	if address == "" {
		address = joinParts([]string{l.Location.Address1, city, state, l.Location.ZipCode})
	}

	description := fmt.Sprintf("Local %s in %s, VA.", strings.ToLower(string(cat)), city)
	if address != "" {
		description += " " + address
	}

	return &Record{
		Name:        name,
		Category:    cat,
		Description: truncate(description),
		Address:     address,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		Phone:       l.Phone,
		Website:     l.URL,
		YelpURL:     l.URL,
		Latitude:    l.Coordinates.Latitude,
		Longitude:   l.Coordinates.Longitude,
		PriceRange:  l.Price,
		Hours:       truncate(formatHours(l.Hours)),
		PhotoURL:    l.ImageURL,
		Attributes:  truncate(flattenAttributes(l.Attributes)),
		Summary:     truncate(summary.Generate(name, cat, l.Price, l.Attributes, l.Rating, l.ReviewCount)),
		YelpID:      l.ID,
	}
}

// joinParts joins non-empty trimmed parts with ", ".
func joinParts(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// formatHours flattens the first weekly hours block into display text.
func formatHours(blocks []yelp.HoursBlock) string {
	if len(blocks) == 0 {
		return ""
	}

	var entries []string
	for _, h := range blocks[0].Open {
		day := "Mon"
		if h.Day >= 0 && h.Day < len(weekdays) {
			day = weekdays[h.Day]
		}
		entries = append(entries, fmt.Sprintf("%s: %s-%s", day, h.Start, h.End))
	}
	return strings.Join(entries, "; ")
}

// flattenAttributes renders truthy attributes as "key: value" pairs in
// sorted key order for display.
func flattenAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if summary.Truthy(attrs[k]) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %v", k, attrs[k]))
	}
	return strings.Join(pairs, ", ")
}

func truncate(s string) string {
	if len(s) > maxFieldLength {
		return s[:maxFieldLength]
	}
	return s
}
