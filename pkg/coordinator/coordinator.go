package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/departureboard"
	"github.com/travigo/pidboard/pkg/golemio"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
)

const DefaultUpdateInterval = 30 * time.Second

const refreshKey = "departureboards"

// Fetcher downloads the raw departure board for a set of stops
type Fetcher interface {
	FetchDepartures(ctx context.Context, stopIDs []string, minutesBefore int, minutesAfter int) (*golemio.DepartureBoardResponse, error)
}

// Listener observes the outcome of every refresh. Listeners are called from the refreshing goroutine
// and must not call Refresh themselves.
type Listener interface {
	SnapshotUpdated(snapshot *departureboard.Snapshot)
	UpdateFailed(err *UpdateFailedError)
}

// Metrics records refresh outcomes
type Metrics interface {
	ObserveUpdate(duration time.Duration, snapshot *departureboard.Snapshot)
	ObserveFailure(duration time.Duration, kind config.ErrorKind)
}

type Options struct {
	StopIDs       []string
	MinutesBefore int
	MinutesAfter  int

	// UpdateInterval defaults to DefaultUpdateInterval
	UpdateInterval time.Duration

	Metrics Metrics
}

// Coordinator polls the departure boards on a fixed interval and keeps the last good snapshot
type Coordinator struct {
	fetcher       Fetcher
	stopIDs       []string
	minutesBefore int
	minutesAfter  int
	interval      time.Duration
	metrics       Metrics

	snapshot          atomic.Pointer[departureboard.Snapshot]
	lastUpdateSuccess atomic.Bool
	lastError         atomic.Pointer[UpdateFailedError]

	refreshGroup singleflight.Group

	listenersMu sync.Mutex
	listeners   map[int]Listener
	listenerID  int

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	done      chan struct{}
}

func New(fetcher Fetcher, options Options) *Coordinator {
	interval := options.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		fetcher:       fetcher,
		stopIDs:       slices.Clone(options.StopIDs),
		minutesBefore: options.MinutesBefore,
		minutesAfter:  options.MinutesAfter,
		interval:      interval,
		metrics:       options.Metrics,
		listeners:     map[int]Listener{},
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

func (c *Coordinator) UpdateInterval() time.Duration {
	return c.interval
}

func (c *Coordinator) StopIDs() []string {
	return slices.Clone(c.stopIDs)
}

// Snapshot returns the last successful snapshot, or nil before the first successful refresh
func (c *Coordinator) Snapshot() *departureboard.Snapshot {
	return c.snapshot.Load()
}

func (c *Coordinator) LastUpdateSuccess() bool {
	return c.lastUpdateSuccess.Load()
}

// LastError returns the failure of the most recent refresh, or nil when it succeeded
func (c *Coordinator) LastError() *UpdateFailedError {
	if c.lastUpdateSuccess.Load() {
		return nil
	}

	return c.lastError.Load()
}

// AddListener registers listener and returns a function removing it again
func (c *Coordinator) AddListener(listener Listener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.listenerID
	c.listenerID++
	c.listeners[id] = listener

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()

		delete(c.listeners, id)
	}
}

// FirstRefresh performs the initial refresh. Without a first snapshot no sensor can be built, so
// callers treat its error as fatal.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh fetches a new snapshot, or waits for the refresh already in flight. Giving up on ctx does
// not cancel the shared refresh.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.ctx.Err() != nil {
		return ErrStopped
	}

	result := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return nil, c.update()
	})

	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the periodic refresh until Stop is called
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		go c.run()
	})
}

// Stop cancels the schedule and any refresh in flight. It does not wait for the refresh to return.
func (c *Coordinator) Stop() {
	c.cancel()
}

// Done is closed once the schedule started by Start has exited
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) run() {
	defer close(c.done)

	log.Info().
		Strs("stopids", c.stopIDs).
		Str("interval", c.interval.String()).
		Msg("Starting departure board coordinator")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			log.Info().Strs("stopids", c.stopIDs).Msg("Stopped departure board coordinator")
			return
		case <-ticker.C:
			// Failures are reported to listeners by update
			c.Refresh(c.ctx)
		}
	}
}

func (c *Coordinator) update() error {
	startTime := time.Now()

	raw, err := c.fetcher.FetchDepartures(c.ctx, c.stopIDs, c.minutesBefore, c.minutesAfter)
	if err != nil {
		if c.ctx.Err() != nil {
			return ErrStopped
		}

		return c.fail(time.Since(startTime), err)
	}

	snapshot := departureboard.Reshape(raw, c.stopIDs)
	snapshot.UpdatedAt = time.Now().UTC()

	c.snapshot.Store(snapshot)
	c.lastUpdateSuccess.Store(true)

	duration := time.Since(startTime)
	if c.metrics != nil {
		c.metrics.ObserveUpdate(duration, snapshot)
	}

	departures := 0
	for _, record := range snapshot.Stops {
		departures += len(record.Departures)
	}
	log.Debug().
		Strs("stopids", c.stopIDs).
		Int("departures", departures).
		Str("duration", duration.String()).
		Msg("Updated departure boards")

	for _, listener := range c.currentListeners() {
		listener.SnapshotUpdated(snapshot)
	}

	return nil
}

func (c *Coordinator) fail(duration time.Duration, err error) *UpdateFailedError {
	failed := &UpdateFailedError{
		Kind: config.ClassifyUpstreamError(err),
		Err:  err,
	}

	c.lastError.Store(failed)
	c.lastUpdateSuccess.Store(false)

	if c.metrics != nil {
		c.metrics.ObserveFailure(duration, failed.Kind)
	}

	logEvent := log.Error()
	var unavailable *golemio.UpstreamUnavailableError
	if errors.As(err, &unavailable) {
		logEvent = log.Warn()
	}
	logEvent.Err(err).
		Str("kind", string(failed.Kind)).
		Strs("stopids", c.stopIDs).
		Msg("Failed to update departure boards")

	for _, listener := range c.currentListeners() {
		listener.UpdateFailed(failed)
	}

	return failed
}

func (c *Coordinator) currentListeners() []Listener {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	listeners := make([]Listener, 0, len(c.listeners))
	for _, listener := range c.listeners {
		listeners = append(listeners, listener)
	}

	return listeners
}
