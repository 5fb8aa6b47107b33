package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

var (
	// ErrCityUnknown is returned when neither ipinfo nor the reverse
	// geocoder could name a city.
	ErrCityUnknown = errors.New("city could not be determined")

	errUnexpectedStatus = errors.New("unexpected status code")
)

// ReverseGeocodeFunc resolves coordinates to a city name.
type ReverseGeocodeFunc func(lat, lon float64) (string, error)

// Locator determines the caller's city from their public IP.
type Locator struct {
	baseURL string
	token   string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	reverse ReverseGeocodeFunc
}

// NewLocator creates a Locator against an ipinfo-compatible endpoint.
// reverse may be nil, in which case coordinates are not used.
func NewLocator(client *http.Client, baseURL, token string, reverse ReverseGeocodeFunc) *Locator {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ipinfo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("INFO: circuit %s: %s -> %s", name, from, to)
		},
	})

	return &Locator{
		baseURL: baseURL,
		token:   token,
		client:  client,
		circuit: cb,
		reverse: reverse,
	}
}

// GoogleReverseGeocoder returns a ReverseGeocodeFunc backed by the Google
// Geocoding API, or nil when apiKey is empty.
func GoogleReverseGeocoder(apiKey string) ReverseGeocodeFunc {
	if apiKey == "" {
		return nil
	}
	geocoder.ApiKey = apiKey
	return func(lat, lon float64) (string, error) {
		addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		if err != nil {
			return "", fmt.Errorf("reverse geocode: %w", err)
		}
		for _, a := range addresses {
			if a.City != "" {
				return a.City, nil
			}
		}
		return "", ErrCityUnknown
	}
}

type ipinfoResponse struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
}

// City looks up the city for ip. An empty ip asks for the caller's own
// address as seen by the endpoint.
func (l *Locator) City(ctx context.Context, ip string) (string, error) {
	result, err := l.circuit.Execute(func() (interface{}, error) {
		return l.fetch(ctx, ip)
	})
	if err != nil {
		return "", err
	}

	info := result.(ipinfoResponse)
	if city := strings.TrimSpace(info.City); city != "" {
		return city, nil
	}

	if l.reverse == nil || info.Loc == "" {
		return "", ErrCityUnknown
	}
	lat, lon, err := parseLoc(info.Loc)
	if err != nil {
		return "", err
	}
	return l.reverse(lat, lon)
}

func (l *Locator) fetch(ctx context.Context, ip string) (ipinfoResponse, error) {
	u := l.baseURL
	if ip != "" {
		u = strings.TrimSuffix(strings.TrimSuffix(u, "/json"), "/") + "/" + url.PathEscape(ip) + "/json"
	}
	if l.token != "" {
		u += "?token=" + url.QueryEscape(l.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ipinfoResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return ipinfoResponse{}, fmt.Errorf("ipinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ipinfoResponse{}, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	var info ipinfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&info); err != nil {
		return ipinfoResponse{}, fmt.Errorf("ipinfo decode: %w", err)
	}
	return info, nil
}

func parseLoc(loc string) (float64, float64, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed loc %q", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude in %q: %w", loc, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude in %q: %w", loc, err)
	}
	return lat, lon, nil
}
