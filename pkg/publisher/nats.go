package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/departureboard"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

type NATSMetrics interface {
	NATSSetConnected(connected bool)
}

// NATSSink publishes each sensor state on <subject>.<unique id>
type NATSSink struct {
	conn    natsConn
	subject string
}

func NewNATSSink(url string, subject string, metrics NATSMetrics) (*NATSSink, error) {
	setConnected := func(connected bool) {
		if metrics != nil {
			metrics.NATSSetConnected(connected)
		}
	}

	nc, err := nats.Connect(url,
		nats.Name("pidboard"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			setConnected(false)
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			setConnected(true)
			log.Info().Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			setConnected(false)
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	setConnected(true)

	log.Info().Str("url", url).Str("subject", subject).Msg("Connected to NATS")

	return &NATSSink{conn: nc, subject: subject}, nil
}

func (s *NATSSink) Name() string {
	return "nats"
}

func (s *NATSSink) Subject(state departureboard.SensorState) string {
	return fmt.Sprintf("%s.%s", s.subject, subjectToken(state.UniqueID))
}

func (s *NATSSink) Publish(ctx context.Context, state departureboard.SensorState, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := s.Subject(state)
	log.Debug().Str("subject", subject).Msg("Publishing sensor state")

	return s.conn.Publish(subject, payload)
}

func (s *NATSSink) Close() {
	if s.conn != nil {
		s.conn.Drain()
		s.conn.Close()
	}
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain whitespace, '.', '>' or '*'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
