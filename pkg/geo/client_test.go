package geo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClientGeocodeRequest(t *testing.T) {
	respBody := `[{"lat":"12.9716","lon":"77.5946"}]`

	var capturedURL string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithGeocodeBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: rt}))

	coord, err := client.Geocode(context.Background(), "12 MG Road, Bengaluru")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://geo.test/search?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "format=jsonv2") {
		t.Fatalf("missing format param in %q", capturedURL)
	}
	if coord.Latitude != 12.9716 || coord.Longitude != 77.5946 {
		t.Fatalf("unexpected coordinate %+v", coord)
	}
}

func TestClientGeocodeNoMatches(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[]`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithGeocodeBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: rt}))

	if _, err := client.Geocode(context.Background(), "nowhere at all"); err == nil {
		t.Fatalf("expected error for empty geocode result")
	}
}

func TestClientRouteDistance(t *testing.T) {
	respBody := `{"code":"Ok","routes":[{"distance":12345.6}]}`

	var capturedURL string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithRoutingBaseURL("http://route.test"), WithHTTPClient(&http.Client{Transport: rt}))

	km, err := client.RouteDistanceKm(context.Background(),
		Coordinate{Latitude: 12.97, Longitude: 77.59},
		Coordinate{Latitude: 13.03, Longitude: 77.62},
	)
	if err != nil {
		t.Fatalf("route distance: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://route.test/route/v1/driving/") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if km != 12.3456 {
		t.Fatalf("unexpected distance %v", km)
	}
}

func TestClientRouteDistanceNoRoute(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"code":"NoRoute","routes":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithRoutingBaseURL("http://route.test"), WithHTTPClient(&http.Client{Transport: rt}))

	if _, err := client.RouteDistanceKm(context.Background(), Coordinate{}, Coordinate{}); err == nil {
		t.Fatalf("expected error for missing route")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
