package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dettline1/WeatherApp/internal/weather"
)

var errNoHTTPClient = errors.New("http client not configured")

// doRequest executes exactly one request bound to ctx. Any failure before a
// response status is available is a transport failure.
func doRequest(
	ctx context.Context,
	client *http.Client,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, weather.NewError(weather.KindUnclassified, errNoHTTPClient)
	}

	req, err := buildRequest()
	if err != nil {
		return nil, weather.NewError(weather.KindUnclassified, err)
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, weather.NewError(weather.KindTransportFailure, err)
	}
	return resp, nil
}

// classifyStatus maps a non-200 provider status to its error kind.
func classifyStatus(code int) weather.Kind {
	switch code {
	case http.StatusUnauthorized:
		return weather.KindInvalidCredentials
	case http.StatusNotFound:
		return weather.KindNotFound
	default:
		return weather.KindUnclassified
	}
}
