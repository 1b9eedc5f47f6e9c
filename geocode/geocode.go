// Package geocode resolves business addresses to coordinates via the Google
// Geocoding API. It is a collaborator of the directory core: reconciliation
// never depends on it, and coordinate backfill runs separately.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const BaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// richmondBounds biases results toward the Richmond, VA area.
const richmondBounds = "37.4,-77.5|37.6,-77.3"

// Geocoder resolves an address to coordinates. found is false when the
// address resolves to nothing; that is not an error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, found bool, err error)
}

type httpGeocoder struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// New creates a Geocoder backed by the Google Geocoding API.
func New(client *http.Client, apiKey string) Geocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpGeocoder{client: client, apiKey: apiKey, baseURL: BaseURL}
}

// NewWithBaseURL creates a Geocoder with a custom base URL (for testing).
func NewWithBaseURL(client *http.Client, apiKey, baseURL string) Geocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpGeocoder{client: client, apiKey: apiKey, baseURL: baseURL}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves the address, appending the Richmond, VA context when the
// address does not already carry it.
func (g *httpGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, 0, false, nil
	}
	if !strings.Contains(address, "Richmond") {
		address += ", Richmond, VA"
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	params.Set("bounds", richmondBounds)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("creating geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocoding %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocoding %q returned status %d", address, resp.StatusCode)
	}

	var gr geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return 0, 0, false, fmt.Errorf("decoding geocode response: %w", err)
	}

	switch gr.Status {
	case "OK":
		if len(gr.Results) == 0 {
			return 0, 0, false, nil
		}
		loc := gr.Results[0].Geometry.Location
		return loc.Lat, loc.Lng, true, nil
	case "ZERO_RESULTS":
		return 0, 0, false, nil
	default:
		return 0, 0, false, fmt.Errorf("geocoding %q failed with status %s", address, gr.Status)
	}
}
