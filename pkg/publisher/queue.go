package publisher

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/travigo/pidboard/pkg/departureboard"
)

// QueueSink pushes sensor states onto a redis backed rmq queue
type QueueSink struct {
	queue rmq.Queue
}

func NewQueueSink(connection rmq.Connection, name string) (*QueueSink, error) {
	queue, err := connection.OpenQueue(name)
	if err != nil {
		return nil, err
	}

	return &QueueSink{queue: queue}, nil
}

func (s *QueueSink) Name() string {
	return "queue"
}

func (s *QueueSink) Publish(ctx context.Context, state departureboard.SensorState, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.queue.PublishBytes(payload)
}

func (s *QueueSink) Close() {}
