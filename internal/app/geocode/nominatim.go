/*
Package geocode turns free-text addresses into coordinates.

The primary source is a Nominatim (OpenStreetMap) instance. Answers are cached
in Redis, and when the service is unreachable or finds nothing, the embedded
known-location catalog answers instead.
*/
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Place is one Nominatim search result. Coordinates arrive as strings.
type Place struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Coordinates parses the result position. ok is false when either value is malformed.
func (p Place) Coordinates() (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// UpstreamError reports a non-2xx answer from the geocoding service.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("nominatim responded with status %d", e.Status)
}

// NominatimClient queries the /search endpoint of a Nominatim instance.
type NominatimClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewNominatimClient builds a client for baseURL. timeout bounds each request.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Search runs a free-text query returning at most limit places.
func (c *NominatimClient) Search(ctx context.Context, q string, limit int, addressDetails bool) ([]Place, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	if addressDetails {
		params.Set("addressdetails", "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, &UpstreamError{Status: res.StatusCode}
	}

	var places []Place
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	return places, nil
}
