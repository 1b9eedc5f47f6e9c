// Package yelp is the client for the Yelp Fusion business search API, the
// directory's external listing source.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const BaseURL = "https://api.yelp.com/v3"

// Location is the fixed search area for the directory.
const Location = "Richmond, VA"

// Search is one business-search request against the source.
type Search struct {
	Term       string
	Categories string
}

// DefaultSearches covers the directory's five categories. Fetching per
// category keeps each response focused; the reconciler collapses businesses
// that show up under more than one search.
var DefaultSearches = []Search{
	{Categories: "restaurants"},
	{Categories: "shopping"},
	{Categories: "localservices"},
	{Categories: "nightlife"},
	{Categories: "gyms"},
}

// TagCategory is one entry of a listing's category taxonomy.
type TagCategory struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Coordinates holds a listing's position. Pointers distinguish absent
// coordinates from a genuine 0,0.
type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LocationInfo holds a listing's structured address fields.
type LocationInfo struct {
	Address1       string   `json:"address1"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	DisplayAddress []string `json:"display_address"`
}

// OpenHours is one weekly opening interval.
type OpenHours struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// HoursBlock groups a listing's opening intervals.
type HoursBlock struct {
	Open []OpenHours `json:"open"`
}

// Listing is one raw business as returned by the source.
type Listing struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	IsClosed    bool           `json:"is_closed"`
	Rating      float64        `json:"rating"`
	ReviewCount int            `json:"review_count"`
	Categories  []TagCategory  `json:"categories"`
	Location    LocationInfo   `json:"location"`
	Coordinates Coordinates    `json:"coordinates"`
	Phone       string         `json:"phone"`
	URL         string         `json:"url"`
	Price       string         `json:"price"`
	ImageURL    string         `json:"image_url"`
	Hours       []HoursBlock   `json:"hours"`
	Attributes  map[string]any `json:"attributes"`
}

// TagAliases returns the listing's category aliases in source priority order.
func (l *Listing) TagAliases() []string {
	aliases := make([]string, 0, len(l.Categories))
	for _, c := range l.Categories {
		aliases = append(aliases, c.Alias)
	}
	return aliases
}

type searchResponse struct {
	Businesses []Listing `json:"businesses"`
	Total      int       `json:"total"`
}

// Client interface for source search operations.
type Client interface {
	Search(ctx context.Context, s Search, limit int) ([]Listing, error)
}

type httpClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewClient creates a source client authenticated with apiKey.
func NewClient(client *http.Client, apiKey string) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{client: client, apiKey: apiKey, baseURL: BaseURL}
}

// NewClientWithBaseURL creates a source client with a custom base URL (for testing).
func NewClientWithBaseURL(client *http.Client, apiKey, baseURL string) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{client: client, apiKey: apiKey, baseURL: baseURL}
}

// Search runs one business search, sorted by rating, scoped to Location.
func (c *httpClient) Search(ctx context.Context, s Search, limit int) ([]Listing, error) {
	params := url.Values{}
	params.Set("location", Location)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort_by", "rating")
	if s.Term != "" {
		params.Set("term", s.Term)
	}
	if s.Categories != "" {
		params.Set("categories", s.Categories)
	}

	reqURL := fmt.Sprintf("%s/businesses/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", s.Categories, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q returned status %d", s.Categories, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return sr.Businesses, nil
}

// FetchSnapshot runs every search and concatenates the results into one
// source snapshot. A failed search is logged and skipped so one bad category
// cannot sink the sync; the call errors only when every search failed, which
// keeps "zero results" distinguishable from "fetch failed" for the caller.
func FetchSnapshot(ctx context.Context, client Client, searches []Search, perSearch int) ([]Listing, error) {
	var listings []Listing
	var lastErr error
	failed := 0

	for _, s := range searches {
		batch, err := client.Search(ctx, s, perSearch)
		if err != nil {
			slog.Warn("source search failed", "categories", s.Categories, "term", s.Term, "error", err)
			lastErr = err
			failed++
			continue
		}
		listings = append(listings, batch...)
	}

	if len(searches) > 0 && failed == len(searches) {
		return nil, fmt.Errorf("all %d source searches failed: %w", failed, lastErr)
	}
	return listings, nil
}
