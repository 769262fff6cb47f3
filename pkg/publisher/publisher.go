package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/pidboard/pkg/coordinator"
	"github.com/travigo/pidboard/pkg/departureboard"
)

const publishTimeout = 10 * time.Second

// Sink receives the rendered state of every sensor after each refresh
type Sink interface {
	Name() string
	Publish(ctx context.Context, state departureboard.SensorState, payload []byte) error
	Close()
}

type Metrics interface {
	PublishedInc(sink string)
	PublishErrInc(sink string)
}

// Publisher pushes sensor states to its sinks whenever the coordinator finishes a refresh
type Publisher struct {
	sensors []departureboard.Sensor
	sinks   []Sink
	metrics Metrics
}

func New(sensors []departureboard.Sensor, sinks []Sink, metrics Metrics) *Publisher {
	return &Publisher{
		sensors: sensors,
		sinks:   sinks,
		metrics: metrics,
	}
}

func (p *Publisher) SnapshotUpdated(snapshot *departureboard.Snapshot) {
	p.publishStates()
}

// UpdateFailed republishes the states so subscribers see the sensors become unavailable
func (p *Publisher) UpdateFailed(err *coordinator.UpdateFailedError) {
	p.publishStates()
}

func (p *Publisher) publishStates() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishAll(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to publish sensor states")
	}
}

// PublishAll sends the current state of every sensor to every sink
func (p *Publisher) PublishAll(ctx context.Context) error {
	if len(p.sinks) == 0 {
		return nil
	}

	states := make([]departureboard.SensorState, 0, len(p.sensors))
	payloads := make([][]byte, 0, len(p.sensors))
	for _, sensor := range p.sensors {
		state := departureboard.StateOf(sensor)
		payload, err := json.Marshal(state)
		if err != nil {
			return err
		}

		states = append(states, state)
		payloads = append(payloads, payload)
	}

	publishPool := pool.New().WithErrors().WithContext(ctx)

	for _, sink := range p.sinks {
		for i := range states {
			publishPool.Go(func(ctx context.Context) error {
				err := sink.Publish(ctx, states[i], payloads[i])
				if p.metrics != nil {
					if err != nil {
						p.metrics.PublishErrInc(sink.Name())
					} else {
						p.metrics.PublishedInc(sink.Name())
					}
				}
				return err
			})
		}
	}

	return publishPool.Wait()
}

func (p *Publisher) Close() {
	for _, sink := range p.sinks {
		sink.Close()
	}
}
