package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/departureboard"
	"github.com/travigo/pidboard/pkg/golemio"
)

func TestObserveUpdate(t *testing.T) {
	c := NewCollector()

	snapshot := departureboard.Reshape(&golemio.DepartureBoardResponse{
		Departures: []any{
			map[string]any{"stop": map[string]any{"id": "U1Z1P"}},
			map[string]any{"stop": map[string]any{"id": "U1Z1P"}},
		},
	}, []string{"U1Z1P", "U2Z1P"})
	snapshot.UpdatedAt = time.Unix(1704103200, 0)

	c.ObserveUpdate(250*time.Millisecond, snapshot)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Updates))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Stops))
	assert.Equal(t, 1704103200.0, testutil.ToFloat64(c.LastSuccess))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Departures.WithLabelValues("U1Z1P")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Departures.WithLabelValues("U2Z1P")))
}

func TestObserveUpdateDropsRemovedStops(t *testing.T) {
	c := NewCollector()

	c.ObserveUpdate(time.Millisecond, departureboard.Reshape(nil, []string{"U1Z1P", "U2Z1P"}))
	assert.Equal(t, 2, testutil.CollectAndCount(c.Departures))

	c.ObserveUpdate(time.Millisecond, departureboard.Reshape(nil, []string{"U1Z1P"}))
	assert.Equal(t, 1, testutil.CollectAndCount(c.Departures))
}

func TestObserveFailure(t *testing.T) {
	c := NewCollector()

	c.ObserveFailure(time.Second, config.ErrorCannotConnect)
	c.ObserveFailure(time.Second, config.ErrorCannotConnect)
	c.ObserveFailure(time.Second, config.ErrorInvalidAuth)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.UpdateFailures.WithLabelValues(string(config.ErrorCannotConnect))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpdateFailures.WithLabelValues(string(config.ErrorInvalidAuth))))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Updates))
}

func TestPublisherMetrics(t *testing.T) {
	c := NewCollector()

	c.PublishedInc("nats")
	c.PublishErrInc("queue")
	c.NATSSetConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Published.WithLabelValues("nats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PublishErrors.WithLabelValues("queue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSConnected))

	c.NATSSetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.NATSConnected))
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.SetUpdateInterval(30 * time.Second)

	server := httptest.NewServer(c.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pidboard_update_interval_seconds 30")
}
