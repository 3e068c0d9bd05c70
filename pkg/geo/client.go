package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

const (
	defaultGeocodeBaseURL       = "https://nominatim.openstreetmap.org"
	defaultRoutingBaseURL       = "https://router.project-osrm.org"
	requestBodyReadLimit  int64 = 1024
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-form address line into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinate, error)
}

// Router computes the driving distance between two coordinates.
type Router interface {
	RouteDistanceKm(ctx context.Context, from, to Coordinate) (float64, error)
}

// Client talks to a Nominatim-compatible geocoder and an
// OSRM-compatible routing service.
type Client struct {
	httpClient     *http.Client
	geocodeBaseURL string
	routingBaseURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithGeocodeBaseURL overrides the geocoder base URL.
func WithGeocodeBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.geocodeBaseURL = trimmed
		}
	}
}

// WithRoutingBaseURL overrides the routing service base URL.
func WithRoutingBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.routingBaseURL = trimmed
		}
	}
}

// NewClient builds the geo client with sane defaults.
func NewClient(opts ...Option) *Client {
	client := &Client{
		geocodeBaseURL: defaultGeocodeBaseURL,
		routingBaseURL: defaultRoutingBaseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client
}

// Geocode resolves an address line to a coordinate. A successful
// lookup with zero matches is reported as a dependency error so
// callers can decide how soft to fail.
func (c *Client) Geocode(ctx context.Context, address string) (*Coordinate, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geo client not configured")
	}
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	query := url.Values{}
	query.Set("q", trimmed)
	query.Set("format", "jsonv2")
	query.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(c.geocodeBaseURL, "/"), query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}
	if len(apiResp) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address could not be geocoded")
	}

	lat, err := strconv.ParseFloat(apiResp[0].Lat, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode latitude")
	}
	lon, err := strconv.ParseFloat(apiResp[0].Lon, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode longitude")
	}

	return &Coordinate{Latitude: lat, Longitude: lon}, nil
}

// RouteDistanceKm returns the driving distance between two points in
// kilometers using the fastest route.
func (c *Client) RouteDistanceKm(ctx context.Context, from, to Coordinate) (float64, error) {
	if c == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "geo client not configured")
	}

	endpoint := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		strings.TrimRight(c.routingBaseURL, "/"),
		from.Longitude, from.Latitude,
		to.Longitude, to.Latitude,
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build route request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute route request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "route request failed")
	}

	var apiResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route response")
	}
	if apiResp.Code != "Ok" || len(apiResp.Routes) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "no route found between points")
	}

	return apiResp.Routes[0].Distance / 1000, nil
}
