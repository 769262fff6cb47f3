package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/departureboard"
)

// Collector holds the service metrics on its own registry
type Collector struct {
	reg *prometheus.Registry

	Updates        prometheus.Counter
	UpdateFailures *prometheus.CounterVec // kind label: cannot_connect|invalid_auth|...
	UpdateDuration prometheus.Histogram
	LastSuccess    prometheus.Gauge // unix seconds

	Stops      prometheus.Gauge
	Departures *prometheus.GaugeVec // stop_id label

	Published     *prometheus.CounterVec // sink label: nats|queue
	PublishErrors *prometheus.CounterVec
	NATSConnected prometheus.Gauge

	UpdateInterval prometheus.Gauge // seconds
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pidboard_updates_total",
			Help: "Total successful departure board refreshes.",
		}),
		UpdateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pidboard_update_failures_total",
			Help: "Total failed departure board refreshes.",
		}, []string{"kind"}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pidboard_update_duration_seconds",
			Help:    "Duration of departure board refreshes, successful or not.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pidboard_last_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh.",
		}),
		Stops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pidboard_stops",
			Help: "Number of stops in the current snapshot.",
		}),
		Departures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pidboard_departures",
			Help: "Number of departures per stop in the current snapshot.",
		}, []string{"stop_id"}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pidboard_published_total",
			Help: "Total sensor states published.",
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pidboard_publish_errors_total",
			Help: "Total sensor state publish errors.",
		}, []string{"sink"}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pidboard_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		UpdateInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pidboard_update_interval_seconds",
			Help: "Departure board refresh interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.Updates, c.UpdateFailures, c.UpdateDuration, c.LastSuccess,
		c.Stops, c.Departures,
		c.Published, c.PublishErrors, c.NATSConnected,
		c.UpdateInterval,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) SetUpdateInterval(interval time.Duration) {
	c.UpdateInterval.Set(interval.Seconds())
}

func (c *Collector) ObserveUpdate(duration time.Duration, snapshot *departureboard.Snapshot) {
	c.Updates.Inc()
	c.UpdateDuration.Observe(duration.Seconds())
	c.LastSuccess.Set(float64(snapshot.UpdatedAt.Unix()))

	// Stops can disappear after the options change
	c.Departures.Reset()
	c.Stops.Set(float64(len(snapshot.StopIDs)))
	for _, record := range snapshot.Records() {
		c.Departures.WithLabelValues(record.StopID).Set(float64(len(record.Departures)))
	}
}

func (c *Collector) ObserveFailure(duration time.Duration, kind config.ErrorKind) {
	c.UpdateFailures.WithLabelValues(string(kind)).Inc()
	c.UpdateDuration.Observe(duration.Seconds())
}

func (c *Collector) PublishedInc(sink string) {
	c.Published.WithLabelValues(sink).Inc()
}

func (c *Collector) PublishErrInc(sink string) {
	c.PublishErrors.WithLabelValues(sink).Inc()
}

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
