package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", defaultInterval},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=2m", defaultInterval},
		{"interval_ms_too_large", "/ws?interval_ms=120000", defaultInterval},
		{"interval_invalid_string", "/ws?interval=bogus", defaultInterval},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func TestWebSocket_ActivityFeed_InitialAndPeriodic(t *testing.T) {
	logs := &mockLogs{logs: []models.TriggerLog{
		{LogID: "log-1", DeviceID: 1, Temperature: 18},
		{LogID: "log-2", DeviceID: 1, Temperature: 0, NoOp: true},
	}}
	s := &service.Service{Logs: logs}

	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval_ms", "20") // fast ticks for the test
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	type envelope struct {
		Type  string          `json:"type"`
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}

	// Read the initial feed
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "activity" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var entries []models.TriggerLog
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("unmarshal logs: %v", err)
	}
	if len(entries) != 2 || entries[0].LogID != "log-1" || !entries[1].NoOp {
		t.Fatalf("unexpected feed: %+v", entries)
	}
	if logs.lastListLimit != feedLogLimit {
		t.Fatalf("expected feed limit %d, got %d", feedLogLimit, logs.lastListLimit)
	}

	// Read a subsequent tick
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "activity" {
		t.Fatalf("expected type=activity, got %+v", env)
	}
}

func TestWebSocket_InitialListError_Closes(t *testing.T) {
	logs := &mockLogs{err: errors.New("boom")}
	s := &service.Service{Logs: logs}

	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// The server closes right after the initial feed fails.
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
