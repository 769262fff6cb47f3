package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/coordinator"
	"github.com/travigo/pidboard/pkg/departureboard"
	"github.com/travigo/pidboard/pkg/golemio"
	"github.com/travigo/pidboard/pkg/publisher"
)

var (
	ErrNotSetUp     = errors.New("integration has not been set up")
	ErrAlreadySetUp = errors.New("integration is already set up")
)

// Dependencies are shared by every setup of the integration and outlive reloads
type Dependencies struct {
	BaseURL        string
	HTTPClient     *http.Client
	UpdateInterval time.Duration

	Metrics          coordinator.Metrics
	Sinks            []publisher.Sink
	PublisherMetrics publisher.Metrics
}

// Runtime is everything built from one configuration entry
type Runtime struct {
	Entry       config.Entry
	Data        config.RuntimeData
	Client      *golemio.Client
	Coordinator *coordinator.Coordinator
	Sensors     []*departureboard.StopSensor

	publisher      *publisher.Publisher
	removeListener func()
}

func (r *Runtime) start(ctx context.Context) {
	r.Coordinator.Start()

	if r.publisher != nil {
		if err := r.publisher.PublishAll(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to publish initial sensor states")
		}
	}

	log.Info().
		Str("title", r.Entry.Title).
		Strs("stopids", r.Data.StopIDs).
		Int("minutesbefore", r.Data.MinutesBefore).
		Int("minutesafter", r.Data.MinutesAfter).
		Msg("Set up departure board integration")
}

func (r *Runtime) stop() {
	if r.removeListener != nil {
		r.removeListener()
	}
	r.Coordinator.Stop()
}

// Integration owns the runtime of the configured entry and rebuilds it when the options change
type Integration struct {
	deps Dependencies

	mu          sync.RWMutex
	runtime     *Runtime
	cancelRetry context.CancelFunc
}

func New(deps Dependencies) *Integration {
	return &Integration{deps: deps}
}

// UpdateInterval is the poll interval of every runtime, and the delay between reload retries
func (i *Integration) UpdateInterval() time.Duration {
	if i.deps.UpdateInterval <= 0 {
		return coordinator.DefaultUpdateInterval
	}

	return i.deps.UpdateInterval
}

// Setup builds the client, coordinator and sensors for entry. The first refresh has to succeed, since
// sensors take their names from it.
func (i *Integration) Setup(ctx context.Context, entry config.Entry) error {
	if _, ok := i.Runtime(); ok {
		return ErrAlreadySetUp
	}

	runtime, err := i.build(ctx, entry)
	if err != nil {
		return err
	}

	i.mu.Lock()
	if i.runtime != nil {
		i.mu.Unlock()
		runtime.stop()
		return ErrAlreadySetUp
	}
	i.runtime = runtime
	i.mu.Unlock()

	runtime.start(ctx)

	return nil
}

// build runs the first refresh of a new runtime without touching the installed one
func (i *Integration) build(ctx context.Context, entry config.Entry) (*Runtime, error) {
	data := entry.RuntimeData()
	if len(data.StopIDs) == 0 {
		return nil, errors.New("configuration entry has no stop ids")
	}

	client := golemio.NewClient(i.deps.BaseURL, data.APIKey, i.deps.HTTPClient)
	departureBoardCoordinator := coordinator.New(client, coordinator.Options{
		StopIDs:        data.StopIDs,
		MinutesBefore:  data.MinutesBefore,
		MinutesAfter:   data.MinutesAfter,
		UpdateInterval: i.deps.UpdateInterval,
		Metrics:        i.deps.Metrics,
	})

	if err := departureBoardCoordinator.FirstRefresh(ctx); err != nil {
		departureBoardCoordinator.Stop()
		return nil, fmt.Errorf("first refresh: %w", err)
	}

	runtime := &Runtime{
		Entry:       entry,
		Data:        data,
		Client:      client,
		Coordinator: departureBoardCoordinator,
	}

	sensors := make([]departureboard.Sensor, 0, len(data.StopIDs))
	for _, stopID := range data.StopIDs {
		sensor := departureboard.NewStopSensor(departureBoardCoordinator, stopID)
		runtime.Sensors = append(runtime.Sensors, sensor)
		sensors = append(sensors, sensor)
	}

	if len(i.deps.Sinks) > 0 {
		runtime.publisher = publisher.New(sensors, i.deps.Sinks, i.deps.PublisherMetrics)
		runtime.removeListener = departureBoardCoordinator.AddListener(runtime.publisher)
	}

	return runtime, nil
}

// replace installs runtime in place of the current one unless guard has been cancelled
func (i *Integration) replace(guard context.Context, runtime *Runtime) {
	i.mu.Lock()
	if guard.Err() != nil {
		i.mu.Unlock()
		runtime.stop()
		return
	}
	previous := i.runtime
	i.runtime = runtime
	i.mu.Unlock()

	if previous != nil {
		previous.stop()
	}
	runtime.start(guard)
}

// Unload stops polling and drops the sensors
func (i *Integration) Unload() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.stopRetryLocked()

	if i.runtime == nil {
		return ErrNotSetUp
	}

	i.runtime.stop()
	i.runtime = nil

	log.Info().Msg("Unloaded departure board integration")

	return nil
}

// Reload replaces the runtime with one built from entry. The current runtime keeps polling until the
// new one has refreshed once. A failed reload is retried every update interval, unless the upstream
// rejected the api key.
func (i *Integration) Reload(ctx context.Context, entry config.Entry) error {
	i.mu.Lock()
	i.stopRetryLocked()
	i.mu.Unlock()

	runtime, err := i.build(ctx, entry)
	if err != nil {
		if retryable(err) {
			i.retryReload(entry)
		}
		return err
	}

	i.replace(context.Background(), runtime)

	return nil
}

func (i *Integration) retryReload(entry config.Entry) {
	ctx, cancel := context.WithCancel(context.Background())

	i.mu.Lock()
	i.stopRetryLocked()
	i.cancelRetry = cancel
	i.mu.Unlock()

	interval := i.UpdateInterval()
	log.Warn().Str("retryin", interval.String()).Msg("Departure board integration not reloaded, retrying")

	go func() {
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			runtime, err := i.build(ctx, entry)
			if err != nil {
				if !retryable(err) {
					log.Error().Err(err).Msg("Giving up reloading departure board integration")
					return
				}
				log.Warn().Err(err).Msg("Failed to reload departure board integration")
				continue
			}

			i.replace(ctx, runtime)
			return
		}
	}()
}

func (i *Integration) stopRetryLocked() {
	if i.cancelRetry != nil {
		i.cancelRetry()
		i.cancelRetry = nil
	}
}

func retryable(err error) bool {
	var updateFailed *coordinator.UpdateFailedError
	if !errors.As(err, &updateFailed) {
		return false
	}

	return updateFailed.Kind != config.ErrorInvalidAuth
}

// Listen reloads the integration every time the entry options are updated
func (i *Integration) Listen(store *config.EntryStore) func() {
	return store.AddUpdateListener(i.Reload)
}

func (i *Integration) Runtime() (*Runtime, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.runtime, i.runtime != nil
}

func (i *Integration) Sensors() []departureboard.Sensor {
	runtime, ok := i.Runtime()
	if !ok {
		return nil
	}

	sensors := make([]departureboard.Sensor, 0, len(runtime.Sensors))
	for _, sensor := range runtime.Sensors {
		sensors = append(sensors, sensor)
	}

	return sensors
}

func (i *Integration) Sensor(uniqueID string) (departureboard.Sensor, bool) {
	for _, sensor := range i.Sensors() {
		if sensor.UniqueID() == uniqueID {
			return sensor, true
		}
	}

	return nil, false
}

// Refresh asks the coordinator for fresh data
func (i *Integration) Refresh(ctx context.Context) error {
	runtime, ok := i.Runtime()
	if !ok {
		return ErrNotSetUp
	}

	return runtime.Coordinator.Refresh(ctx)
}
