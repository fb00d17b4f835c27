package http_test

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/fasthttp/websocket"

	handler "github.com/viajaperu/tripsim/internal/adapters/http"
)

func TestWSSubjectFor(t *testing.T) {
	tests := []struct {
		name                         string
		simulation, booking, channel string
		subject, problem             string
	}{
		{"default channel is position", "3f2a", "", "", "trip.sim.3f2a.position", ""},
		{"position for one simulation", "3f2a", "", "position", "trip.sim.3f2a.position", ""},
		{"position for all", "", "", "position", "trip.sim.*.position", ""},
		{"completed for one simulation", "3f2a", "", "completed", "trip.sim.3f2a.completed", ""},
		{"completed for all", "", "", "completed", "trip.sim.*.completed", ""},
		{"rating for a booking", "", "bk-7", "rating", "trip.rating.requested.bk-7", ""},
		{"rating needs a booking", "3f2a", "", "rating", "", "booking is required for the rating channel"},
		{"unknown channel", "3f2a", "", "weather", "", "unknown channel: weather"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, problem := handler.WSSubjectFor(tt.simulation, tt.booking, tt.channel)
			if subject != tt.subject || problem != tt.problem {
				t.Errorf("got (%q, %q), want (%q, %q)", subject, problem, tt.subject, tt.problem)
			}
		})
	}
}

// wsReply covers both status/error frames and pushed snapshots.
type wsReply struct {
	Status     string  `json:"status"`
	Error      string  `json:"error"`
	Simulation string  `json:"simulation"`
	ID         string  `json:"id"`
	Progress   float64 `json:"progress"`
	Running    bool    `json:"running"`
}

// dialWS serves the app on a loopback listener and opens a WebSocket to /ws.
func dialWS(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, msg map[string]string) {
	t.Helper()
	data, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readWS(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var r wsReply
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return r
}

func TestWebSocket_PollingWithoutNATS(t *testing.T) {
	env := setupApp(t)
	snap := env.create(t, "Trujillo", "Otuzco")
	if status, _ := env.do(t, "POST", "/v1/simulations/"+snap.ID+"/start", ""); status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	env.clock.Advance(7500 * time.Millisecond)
	env.sched.fire()

	conn := dialWS(t, env)
	sendWS(t, conn, map[string]string{"action": "subscribe", "simulation": snap.ID})

	if r := readWS(t, conn); r.Status != "subscribed" || r.Simulation != snap.ID {
		t.Fatalf("expected subscribed ack, got %+v", r)
	}
	first := readWS(t, conn)
	if first.ID != snap.ID || first.Progress != 0.5 || !first.Running {
		t.Fatalf("expected halfway snapshot, got %+v", first)
	}

	// Unchanged progress is not pushed again; the next frame is the later snapshot.
	env.clock.Advance(3750 * time.Millisecond)
	env.sched.fire()
	if next := readWS(t, conn); next.Progress != 0.75 {
		t.Errorf("expected progress 0.75, got %+v", next)
	}

	sendWS(t, conn, map[string]string{"action": "unsubscribe", "simulation": snap.ID})
	if r := readWS(t, conn); r.Status != "unsubscribed" {
		t.Errorf("expected unsubscribed ack, got %+v", r)
	}
}

func TestWebSocket_PollingRejectsOtherFeeds(t *testing.T) {
	env := setupApp(t)
	snap := env.create(t, "Trujillo", "Otuzco")
	conn := dialWS(t, env)

	tests := []struct {
		msg  map[string]string
		want string
	}{
		{map[string]string{"action": "subscribe", "simulation": snap.ID, "channel": "rating", "booking": "bk-1"},
			"only per-simulation position updates are available"},
		{map[string]string{"action": "subscribe", "channel": "position"},
			"only per-simulation position updates are available"},
		{map[string]string{"action": "subscribe", "simulation": "missing"}, "simulation not found"},
		{map[string]string{"action": "pause", "simulation": snap.ID}, "unknown action: pause"},
	}
	for _, tt := range tests {
		sendWS(t, conn, tt.msg)
		if r := readWS(t, conn); r.Error != tt.want {
			t.Errorf("%v: expected error %q, got %+v", tt.msg, tt.want, r)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if r := readWS(t, conn); r.Error != "invalid JSON" {
		t.Errorf("expected invalid JSON error, got %+v", r)
	}
}
