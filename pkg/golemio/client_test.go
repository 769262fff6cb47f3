package golemio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDeparturesRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DepartureBoardsPath, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-access-token"))
		assert.Equal(t, []string{"U1Z1P", "U2Z1P"}, r.URL.Query()["ids[]"])
		assert.Equal(t, "-5", r.URL.Query().Get("minutesBefore"))
		assert.Equal(t, "60", r.URL.Query().Get("minutesAfter"))

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{
			"stops": [{"stop_id": "U1Z1P", "stop_name": "Anděl"}],
			"departures": [{"stop": {"id": "U1Z1P"}}, 7],
			"infotexts": "not a list"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", server.Client())
	departureBoard, err := client.FetchDepartures(context.Background(), []string{"U1Z1P", "U2Z1P"}, -5, 60)
	require.NoError(t, err)

	assert.Len(t, departureBoard.Stops, 1)
	assert.Len(t, departureBoard.Departures, 2)
	assert.Nil(t, departureBoard.Infotexts)
}

func TestFetchDeparturesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong", server.Client())
	_, err := client.FetchDepartures(context.Background(), []string{"U1Z1P"}, 0, 60)
	require.Error(t, err)

	var httpError *UpstreamHTTPError
	require.True(t, errors.As(err, &httpError))
	assert.Equal(t, http.StatusUnauthorized, httpError.Status)
	assert.Equal(t, "invalid token", httpError.Message)
	assert.Contains(t, httpError.URL, DepartureBoardsPath)

	assert.True(t, IsAuthError(err))
	assert.False(t, IsConnectionError(err))
}

func TestFetchDeparturesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", server.Client())
	_, err := client.FetchDepartures(context.Background(), []string{"U1Z1P"}, 0, 60)

	var httpError *UpstreamHTTPError
	require.True(t, errors.As(err, &httpError))
	assert.Equal(t, "Bad Gateway", httpError.Message)
	assert.True(t, IsConnectionError(err))
	assert.False(t, IsAuthError(err))
}

func TestFetchDeparturesTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "secret", server.Client())
	client.Timeout = 50 * time.Millisecond

	_, err := client.FetchDepartures(context.Background(), []string{"U1Z1P"}, 0, 60)

	var unavailableError *UpstreamUnavailableError
	require.True(t, errors.As(err, &unavailableError))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsConnectionError(err))
}

func TestFetchDeparturesConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := NewClient(baseURL, "secret", nil)
	_, err := client.FetchDepartures(context.Background(), []string{"U1Z1P"}, 0, 60)

	var unavailableError *UpstreamUnavailableError
	assert.True(t, errors.As(err, &unavailableError))
}

func TestFetchKnownStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, StopsPath, r.URL.Path)
		assert.Equal(t, []string{"U1Z1P", "BOGUS"}, r.URL.Query()["ids[]"])

		w.Write([]byte(`{"features": [
			{"properties": {"stop_id": "U1Z1P", "stop_name": "Anděl"}},
			{"properties": {}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", server.Client())
	knownStops, err := client.FetchKnownStops(context.Background(), []string{"U1Z1P", "BOGUS"})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"U1Z1P": true}, knownStops)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", "secret", nil)

	assert.Equal(t, DefaultBaseURL, client.BaseURL)
	assert.Equal(t, RequestTimeout, client.Timeout)
	assert.Equal(t, 10*time.Second, client.Timeout)
	assert.Same(t, http.DefaultClient, client.HTTPClient)
}
