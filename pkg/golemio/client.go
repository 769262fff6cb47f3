package golemio

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

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.golemio.cz"

	DepartureBoardsPath = "/v2/pid/departureboards"
	StopsPath           = "/v2/gtfs/stops"

	// RequestTimeout bounds every upstream call, including reading the body
	RequestTimeout = 10 * time.Second

	accessTokenHeader = "x-access-token"
	userAgent         = "pidboard/1.0"
)

type Client struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient builds a client for the Golemio API. A nil httpClient falls back to http.DefaultClient so
// connections are pooled across clients.
func NewClient(baseURL string, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Timeout:    RequestTimeout,
		HTTPClient: httpClient,
	}
}

// FetchDepartures returns the departure board for the given stops
func (c *Client) FetchDepartures(ctx context.Context, stopIDs []string, minutesBefore int, minutesAfter int) (*DepartureBoardResponse, error) {
	params := stopIDParams(stopIDs)
	params.Set("minutesBefore", strconv.Itoa(minutesBefore))
	params.Set("minutesAfter", strconv.Itoa(minutesAfter))

	var departureBoard DepartureBoardResponse
	if err := c.get(ctx, DepartureBoardsPath, params, &departureBoard); err != nil {
		return nil, err
	}

	log.Debug().
		Int("stops", len(departureBoard.Stops)).
		Int("departures", len(departureBoard.Departures)).
		Int("infotexts", len(departureBoard.Infotexts)).
		Msg("Fetched departure board")

	return &departureBoard, nil
}

// FetchKnownStops returns the subset of stopIDs the GTFS stops endpoint knows about
func (c *Client) FetchKnownStops(ctx context.Context, stopIDs []string) (map[string]bool, error) {
	var stops stopsResponse
	if err := c.get(ctx, StopsPath, stopIDParams(stopIDs), &stops); err != nil {
		return nil, err
	}

	knownStops := map[string]bool{}
	for _, feature := range stops.Features {
		if feature.Properties.StopID != "" {
			knownStops[feature.Properties.StopID] = true
		}
	}

	return knownStops, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s%s?%s", c.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set(accessTokenHeader, c.APIKey)
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UpstreamUnavailableError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}

		return &UpstreamHTTPError{
			Status:  resp.StatusCode,
			URL:     requestURL,
			Message: message,
		}
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamUnavailableError{Cause: err}
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func stopIDParams(stopIDs []string) url.Values {
	params := url.Values{}
	for _, stopID := range stopIDs {
		params.Add("ids[]", stopID)
	}

	return params
}
