package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/viajaperu/tripsim/internal/adapters/nats"
	"github.com/viajaperu/tripsim/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action     string `json:"action"`     // "subscribe" | "unsubscribe"
	Simulation string `json:"simulation"` // simulation id ("" = all, position/completed only)
	Booking    string `json:"booking"`    // booking id for the rating channel
	Channel    string `json:"channel"`    // "position" | "completed" | "rating" (default: position)
}

// pollInterval is how often snapshots are pushed when NATS is not configured.
const pollInterval = 100 * time.Millisecond

// wsSubjectFor maps a client request onto a NATS subject.
func wsSubjectFor(m wsMessage) (string, string) {
	channel := m.Channel
	if channel == "" {
		channel = "position"
	}
	switch channel {
	case "position":
		if m.Simulation == "" {
			return natsadapter.SubjectPositionAll, ""
		}
		return natsadapter.PositionSubject(m.Simulation), ""
	case "completed":
		if m.Simulation == "" {
			return natsadapter.SubjectCompletedAll, ""
		}
		return natsadapter.CompletedSubject(m.Simulation), ""
	case "rating":
		if m.Booking == "" {
			return "", "booking is required for the rating channel"
		}
		return natsadapter.RatingSubject(m.Booking), ""
	default:
		return "", "unknown channel: " + channel
	}
}

// WebSocketHandler returns a handler that upgrades to WebSocket and streams
// simulation updates. Clients send JSON:
//
//	{"action":"subscribe","simulation":"<id>","channel":"position"}
//
// With NATS configured, events are relayed from the broker. Without it, the
// handler polls the position of subscribed simulations directly.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subs := make(map[string]*nats.Subscription) // subject -> subscription
		polled := make(map[string]float64)           // simulation id -> last pushed progress, NATS-less mode
		var pollMu sync.Mutex

		done := make(chan struct{})
		go func() {
			ping := time.NewTicker(30 * time.Second)
			defer ping.Stop()
			poll := time.NewTicker(pollInterval)
			defer poll.Stop()
			for {
				select {
				case <-ping.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-poll.C:
					pollMu.Lock()
					for id, last := range polled {
						snap, err := deps.Simulations.Get(id)
						if err != nil || snap.Progress == last {
							continue
						}
						polled[id] = snap.Progress
						_ = writeJSON(snap)
					}
					pollMu.Unlock()
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			if deps.NATS == nil {
				if m.Simulation == "" || (m.Channel != "" && m.Channel != "position") {
					_ = writeJSON(map[string]string{"error": "only per-simulation position updates are available"})
					continue
				}
				if _, err := deps.Simulations.Get(m.Simulation); err != nil && m.Action == "subscribe" {
					_ = writeJSON(map[string]string{"error": "simulation not found"})
					continue
				}
				pollMu.Lock()
				switch m.Action {
				case "subscribe":
					polled[m.Simulation] = -1
					_ = writeJSON(map[string]string{"status": "subscribed", "simulation": m.Simulation})
				case "unsubscribe":
					delete(polled, m.Simulation)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "simulation": m.Simulation})
				default:
					_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
				}
				pollMu.Unlock()
				continue
			}

			subject, problem := wsSubjectFor(m)
			if problem != "" {
				_ = writeJSON(map[string]string{"error": problem})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
