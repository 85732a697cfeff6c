package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceProvider returns the driving distance between two points in
// kilometers.
type DistanceProvider interface {
	DrivingDistanceKm(ctx context.Context, from, to Point) (float64, error)
}

const mapboxBaseURL = "https://api.mapbox.com"

// MapboxClient resolves driving distances through the Mapbox Directions API.
type MapboxClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewMapboxClient(token string) *MapboxClient {
	return &MapboxClient{
		token:      token,
		baseURL:    mapboxBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *MapboxClient) DrivingDistanceKm(ctx context.Context, from, to Point) (float64, error) {
	// Mapbox takes lng,lat pairs.
	url := fmt.Sprintf("%s/directions/v5/mapbox/driving/%f,%f;%f,%f?access_token=%s&overview=false",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build directions request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call directions api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("directions api returned status %d", resp.StatusCode)
	}

	var body struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"` // meters
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode directions response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return 0, fmt.Errorf("no route found (code %q)", body.Code)
	}

	return body.Routes[0].Distance / 1000, nil
}
