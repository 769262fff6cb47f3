package integration

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/cachedresults"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/golemio"
	"github.com/travigo/pidboard/pkg/metrics"
	"github.com/travigo/pidboard/pkg/publisher"
	"github.com/travigo/pidboard/pkg/redis_client"
)

// NewFlow builds the configuration flow for settings. When redis is connected the options step checks
// stop ids through the known-stops cache.
func NewFlow(settings config.Settings, httpClient *http.Client) config.Flow {
	if !settings.ValidateStops {
		return config.Flow{}
	}

	newLookup := func(apiKey string) config.StopLookup {
		return golemio.NewClient(settings.BaseURL, apiKey, httpClient)
	}

	flow := config.Flow{NewLookup: newLookup}

	if redis_client.Client != nil {
		flow.NewOptionsLookup = func(apiKey string) config.StopLookup {
			return cachedresults.NewKnownStopsCache(newLookup(apiKey), redis_client.Client, settings.KnownStopsTTL)
		}
	}

	return flow
}

// NewDependencies opens the optional sinks configured in settings. The returned function closes them.
func NewDependencies(settings config.Settings, httpClient *http.Client, collector *metrics.Collector) (Dependencies, func(), error) {
	deps := Dependencies{
		BaseURL:    settings.BaseURL,
		HTTPClient: httpClient,
	}

	if collector != nil {
		deps.Metrics = collector
		deps.PublisherMetrics = collector
	}

	if settings.NATS.URL != "" {
		var natsMetrics publisher.NATSMetrics
		if collector != nil {
			natsMetrics = collector
		}

		natsSink, err := publisher.NewNATSSink(settings.NATS.URL, settings.NATS.Subject, natsMetrics)
		if err != nil {
			return deps, func() {}, err
		}
		deps.Sinks = append(deps.Sinks, natsSink)
	}

	if settings.Queue.Name != "" {
		if redis_client.QueueConnection == nil {
			log.Warn().Str("queue", settings.Queue.Name).Msg("Queue configured without a redis connection, not publishing to it")
		} else {
			queueSink, err := publisher.NewQueueSink(redis_client.QueueConnection, settings.Queue.Name)
			if err != nil {
				closeSinks(deps.Sinks)
				return deps, func() {}, err
			}
			deps.Sinks = append(deps.Sinks, queueSink)
		}
	}

	return deps, func() { closeSinks(deps.Sinks) }, nil
}

func closeSinks(sinks []publisher.Sink) {
	for _, sink := range sinks {
		sink.Close()
	}
}
