// Package geo resolves coordinates to counties using the FCC census area API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"parcelsync/httputil"
)

const defaultBaseURL = "https://geo.fcc.gov/api/census/area"

// CountyResolver looks up the county containing a lat/lng point.
type CountyResolver struct {
	baseURL    string
	httpClient *http.Client
}

// ResolverOption configures a CountyResolver.
type ResolverOption func(*CountyResolver)

// WithBaseURL overrides the FCC endpoint, mainly for tests.
func WithBaseURL(u string) ResolverOption {
	return func(r *CountyResolver) {
		r.baseURL = u
	}
}

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *CountyResolver) {
		r.httpClient = c
	}
}

func NewCountyResolver(opts ...ResolverOption) *CountyResolver {
	r := &CountyResolver{
		baseURL:    defaultBaseURL,
		httpClient: httputil.NewClient(15 * time.Second),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type areaResponse struct {
	Results []struct {
		CountyName string `json:"county_name"`
		CountyFIPS string `json:"county_fips"`
		State      string `json:"state_code"`
	} `json:"results"`
}

// ReverseGeocodeCounty returns the county name for the given point, or ""
// when the point matches no census area.
func (r *CountyResolver) ReverseGeocodeCounty(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build census area request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("census area request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read census area response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("census area request returned status %d", resp.StatusCode)
	}

	var parsed areaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode census area response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return "", nil
	}
	return parsed.Results[0].CountyName, nil
}
