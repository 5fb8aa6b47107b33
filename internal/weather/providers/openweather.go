package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dettline1/WeatherApp/internal/common"
	"github.com/dettline1/WeatherApp/internal/weather"
)

const (
	DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

	iconURLPattern = "https://openweathermap.org/img/wn/%s@2x.png"

	// maxBodyBytes bounds how much of a provider response is decoded.
	maxBodyBytes = 1 << 20
)

// OpenWeatherClient implements weather.Client for OpenWeatherMap's current
// weather endpoint.
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenWeatherClient creates a client. The http.Client's Timeout bounds
// every call; an empty baseURL selects the public endpoint.
func NewOpenWeatherClient(client *http.Client, apiKey, baseURL string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherClient{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

func (p *OpenWeatherClient) Name() string {
	return p.name
}

// openWeatherPayload mirrors the fields we read. Pointers distinguish a
// missing field from a zero value.
type openWeatherPayload struct {
	Name *string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	} `json:"weather"`
}

// Fetch queries the provider once and normalizes the response.
func (p *OpenWeatherClient) Fetch(ctx context.Context, city string, lang weather.Language) (weather.Payload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lang", string(lang))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, buildRequest)
	if err != nil {
		return weather.Payload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return weather.Payload{}, weather.Errorf(classifyStatus(resp.StatusCode),
			"%s returned status %d for %q", p.name, resp.StatusCode, city)
	}

	var payload openWeatherPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return weather.Payload{}, weather.NewError(weather.KindUnclassified,
			fmt.Errorf("decode %s response: %w", p.name, err))
	}

	out, err := normalize(payload)
	if err != nil {
		return weather.Payload{}, weather.NewError(weather.KindUnclassified,
			fmt.Errorf("%s response: %w", p.name, err))
	}
	return out, nil
}

func normalize(p openWeatherPayload) (weather.Payload, error) {
	switch {
	case p.Name == nil || *p.Name == "":
		return weather.Payload{}, errors.New("missing name")
	case p.Main.Temp == nil:
		return weather.Payload{}, errors.New("missing main.temp")
	case p.Main.FeelsLike == nil:
		return weather.Payload{}, errors.New("missing main.feels_like")
	case p.Main.Humidity == nil:
		return weather.Payload{}, errors.New("missing main.humidity")
	case p.Wind.Speed == nil:
		return weather.Payload{}, errors.New("missing wind.speed")
	case len(p.Weather) == 0:
		return weather.Payload{}, errors.New("missing weather entries")
	case p.Weather[0].Description == nil:
		return weather.Payload{}, errors.New("missing weather[0].description")
	case p.Weather[0].Icon == nil:
		return weather.Payload{}, errors.New("missing weather[0].icon")
	}

	icon := *p.Weather[0].Icon
	return weather.Payload{
		City:        *p.Name,
		Country:     p.Sys.Country,
		Temperature: common.Round1(*p.Main.Temp),
		FeelsLike:   common.Round1(*p.Main.FeelsLike),
		Humidity:    clampHumidity(*p.Main.Humidity),
		WindSpeed:   common.Round1(*p.Wind.Speed),
		Description: common.Capitalize(*p.Weather[0].Description),
		Icon:        icon,
		IconURL:     IconURL(icon),
	}, nil
}

// IconURL returns the 2x icon image for a provider icon code.
func IconURL(icon string) string {
	return fmt.Sprintf(iconURLPattern, icon)
}

func clampHumidity(h float64) int {
	switch {
	case h < 0:
		return 0
	case h > 100:
		return 100
	default:
		return int(h + 0.5)
	}
}
