// Package category maps external taxonomy tags onto the directory's fixed
// category set.
package category

import "strings"

// Category is one of the directory's five fixed business categories.
type Category string

const (
	Food          Category = "Food"
	Retail        Category = "Retail"
	Services      Category = "Services"
	Entertainment Category = "Entertainment"
	Health        Category = "Health and Wellness"
)

// Default is returned when no tag has a known mapping. External taxonomies
// are large and incomplete coverage is expected, so an unmapped listing is
// categorized rather than rejected.
const Default = Retail

// All lists the fixed categories in display order.
var All = []Category{Food, Retail, Services, Entertainment, Health}

// tagCategories maps lowercased Yelp category aliases to directory categories.
var tagCategories = map[string]Category{
	"food":          Food,
	"restaurants":   Food,
	"coffee":        Food,
	"bakeries":      Food,
	"delis":         Food,
	"pizza":         Food,
	"sandwiches":    Food,
	"shopping":      Retail,
	"retail":        Retail,
	"clothing":      Retail,
	"bookstores":    Retail,
	"homeservices":  Services,
	"localservices": Services,
	"plumbing":      Services,
	"electricians":  Services,
	"autorepair":    Services,
	"laundry":       Services,
	"banks":         Services,
	"professional":  Services,
	"nightlife":     Entertainment,
	"arts":          Entertainment,
	"theater":       Entertainment,
	"museums":       Entertainment,
	"bowling":       Entertainment,
	"movietheaters": Entertainment,
	"gyms":          Health,
	"fitness":       Health,
	"health":        Health,
	"spas":          Health,
	"beautysvc":     Health,
	"massage":       Health,
	"nutrition":     Health,
}

// Normalize returns the category of the first tag with a known mapping.
// Tags arrive in source priority order (most specific first); unknown tags
// are skipped. With no known tag, including an empty list, it returns Default.
func Normalize(tags []string) Category {
	for _, tag := range tags {
		if c, ok := tagCategories[strings.ToLower(tag)]; ok {
			return c
		}
	}
	return Default
}

// Valid reports whether s is one of the fixed categories.
func Valid(s string) bool {
	for _, c := range All {
		if string(c) == s {
			return true
		}
	}
	return false
}
