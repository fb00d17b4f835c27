package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeCompleted delivers each completion event to handler. Handler
// errors are redelivered, up to three deliveries; undecodable payloads are dropped.
func (s *Subscriber) SubscribeCompleted(ctx context.Context, handler func(ctx context.Context, event *domain.SimulationCompleted) error) error {
	sub, err := s.js.Subscribe(SubjectCompletedAll, func(msg *nats.Msg) {
		var event domain.SimulationCompleted
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("bad completion payload", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Warn("completion handler failed", "simulation_id", event.SimulationID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("rating-scheduler"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
