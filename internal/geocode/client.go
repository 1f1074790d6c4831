// Package geocode resolves coordinates to human-readable addresses through a
// Nominatim-compatible reverse-geocoding endpoint.
//
// The client is a best-effort collaborator: the duty-status core treats any
// failure here as degradable (it stores raw coordinates instead) and never
// lets a geocoding error block a status change.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
)

// Client calls a Nominatim-compatible /reverse endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client for the given base URL (no trailing slash).
// The embedded http.Client carries a short timeout so a slow geocoder cannot
// stall the location-update loop.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// reverseResponse is the subset of the Nominatim reverse response we read.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves lat/lng to a display address.
// All failures are wrapped in domain.ErrUpstream so callers can degrade
// uniformly without inspecting transport details.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{
		"format": {"jsonv2"},
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', 6, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: geocode: build request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", "hos-logbook/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: geocode: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: geocode: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: geocode: decode: %v", domain.ErrUpstream, err)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("%w: geocode: empty result", domain.ErrUpstream)
	}
	return body.DisplayName, nil
}
