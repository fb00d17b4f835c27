package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// Subjects used on the wire.
const (
	StreamName = "TRIP_SIM_EVENTS"

	SubjectPositionPrefix = "trip.sim." // trip.sim.<id>.position
	SubjectPositionAll    = "trip.sim.*.position"
	SubjectCompletedAll   = "trip.sim.*.completed"
	SubjectRatingPrefix   = "trip.rating.requested."
	SubjectRatingAll      = "trip.rating.>"
)

// PositionSubject is where live snapshots for one simulation are sent.
func PositionSubject(simID string) string {
	return SubjectPositionPrefix + token(simID) + ".position"
}

// CompletedSubject is where the single completion event for a simulation is sent.
func CompletedSubject(simID string) string {
	return SubjectPositionPrefix + token(simID) + ".completed"
}

// RatingSubject is where rating prompts for a booking are sent.
func RatingSubject(bookingID string) string {
	if bookingID == "" {
		bookingID = "anonymous"
	}
	return SubjectRatingPrefix + token(bookingID)
}

// token keeps ids from splitting a subject into extra levels.
func token(id string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(id)
}

// Publisher implements ports.EventPublisher. Snapshots go over core NATS;
// completion and rating events are persisted in JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

// EnsureStream creates or updates the event stream.
func EnsureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectCompletedAll, SubjectRatingAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) PublishSnapshot(ctx context.Context, snap *domain.SimulationSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.conn.Publish(PositionSubject(snap.ID), data)
}

func (p *Publisher) PublishCompleted(ctx context.Context, event *domain.SimulationCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(CompletedSubject(event.SimulationID), data,
		nats.MsgId(CompletedMsgID(event)), nats.Context(ctx))
	return err
}

func (p *Publisher) PublishRatingRequest(ctx context.Context, req *domain.RatingRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(RatingSubject(req.BookingID), data,
		nats.MsgId(RatingMsgID(req)), nats.Context(ctx))
	return err
}

// CompletedMsgID identifies one run's completion so JetStream drops a
// duplicate publish. A rerun after reset starts later and gets a new id.
func CompletedMsgID(event *domain.SimulationCompleted) string {
	return fmt.Sprintf("completed-%s-%d", event.SimulationID, event.StartedAt.UnixMilli())
}

// RatingMsgID identifies one run's rating prompt.
func RatingMsgID(req *domain.RatingRequest) string {
	return fmt.Sprintf("rating-%s-%d", req.SimulationID, req.StartedAt.UnixMilli())
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("tripsim"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
