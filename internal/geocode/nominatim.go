// Package geocode resolves a track's starting coordinates to a
// human-readable address through a Nominatim-style reverse-geocoding
// endpoint. Resolution is strictly best-effort: display code must never
// block or fail because an address could not be found.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// AddressNotFound is returned for any failure: network error,
	// non-200 status, undecodable body or a response with no address.
	AddressNotFound = "address not found"

	unknownRoad = "Rue inconnue"
	unknownCity = "Ville inconnue"

	defaultTimeout = 10 * time.Second
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

type reverseResponse struct {
	Address *struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		Pedestrian  string `json:"pedestrian"`
		Postcode    string `json:"postcode"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
	} `json:"address"`
}

// ReverseGeocode makes a single attempt to resolve (lat, lon) to
// "{house number} {road}, {postcode} {city}". Missing sub-fields fall
// back to placeholder names; any failure degrades to AddressNotFound.
// No retry: this is a supplementary display field.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	ctx, cancel := context.WithTimeout(ctx, c.effectiveTimeout())
	defer cancel()

	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f", c.effectiveBaseURL(), lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return AddressNotFound
	}
	req.Header.Set("User-Agent", c.effectiveUserAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		logrus.WithError(err).Warn("reverse geocoding request failed")
		return AddressNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("reverse geocoding returned non-200")
		return AddressNotFound
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logrus.WithError(err).Warn("reverse geocoding response undecodable")
		return AddressNotFound
	}
	if payload.Address == nil {
		return AddressNotFound
	}

	addr := payload.Address
	road := addr.Road
	if road == "" {
		road = addr.Pedestrian
	}
	if road == "" {
		road = unknownRoad
	}
	city := addr.City
	if city == "" {
		city = addr.Town
	}
	if city == "" {
		city = addr.Village
	}
	if city == "" {
		city = unknownCity
	}

	street := strings.TrimSpace(addr.HouseNumber + " " + road)
	locality := strings.TrimSpace(addr.Postcode + " " + city)
	return street + ", " + locality
}

func (c *Client) effectiveBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

func (c *Client) effectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c *Client) effectiveUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "trail-tracker/1.0"
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
