package web

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/metrics"
	"github.com/vovakirdan/tui-invaders/internal/platform/raster"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

type wireMessage struct {
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Data    json.RawMessage `json:"data"`
}

func startHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(quietLogger(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(NewRouter(Config{Hub: hub, Logger: quietLogger()}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m wireMessage
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func testFrame(state sim.State, tick uint64, score int) sim.Frame {
	return sim.Frame{
		Mode:     "invaders",
		Ticks:    1,
		Snapshot: sim.Snapshot{Tick: tick, State: state, Score: score, HP: 5},
	}
}

func TestPublisherStreamsFrames(t *testing.T) {
	// A near-zero rate means only the initial token and state changes pass.
	hub, srv := startHub(t, WithPublishRate(0.001))
	conn := dial(t, srv)
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	pub := hub.Publisher("alice")
	pub.ObserveFrame(testFrame(sim.StateRunning, 1, 0))
	pub.ObserveFrame(testFrame(sim.StateRunning, 2, 10)) // throttled
	pub.ObserveFrame(testFrame(sim.StateGameOver, 3, 10))

	first := readMessage(t, conn)
	if first.Event != "frame" || first.Session != "alice" {
		t.Fatalf("first = %+v", first)
	}
	var f struct {
		Snapshot struct {
			Tick uint64 `json:"tick"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(first.Data, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if f.Snapshot.Tick != 1 {
		t.Fatalf("first tick = %d, want 1", f.Snapshot.Tick)
	}

	second := readMessage(t, conn)
	if !strings.Contains(string(second.Data), `"state":"gameover"`) {
		t.Fatalf("second frame should be the state change, got %s", second.Data)
	}

	live := hub.Sessions()
	if len(live) != 1 || live[0].Session != "alice" || live[0].Tick != 3 || live[0].State != sim.StateGameOver {
		t.Fatalf("live = %+v", live)
	}

	pub.Close()
	pub.Close()
	end := readMessage(t, conn)
	if end.Event != "session:end" || end.Session != "alice" {
		t.Fatalf("end = %+v", end)
	}
	if len(hub.Sessions()) != 0 {
		t.Fatal("session still live after Close")
	}
}

func TestLiveEndpoint(t *testing.T) {
	hub, srv := startHub(t)
	hub.Publisher("bob").ObserveFrame(testFrame(sim.StateRunning, 9, 30))
	hub.Publisher("amy").ObserveFrame(testFrame(sim.StateMenu, 0, 0))

	resp, err := http.Get(srv.URL + "/api/live")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var live []LiveSession
	if err := json.NewDecoder(resp.Body).Decode(&live); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(live) != 2 || live[0].Session != "amy" || live[1].Score != 30 {
		t.Fatalf("live = %+v", live)
	}
}

func TestSpectatorLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	hub, srv := startHub(t, WithMaxSpectators(1), WithRecorder(rec))

	dial(t, srv)
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second spectator accepted past the limit")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("resp = %+v", resp)
	}
	_ = resp.Body.Close()

	families, _ := reg.Gather()
	var rejected float64
	for _, mf := range families {
		if mf.GetName() == "invaders_spectator_rejected_total" {
			rejected = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if rejected != 1 {
		t.Fatalf("rejected = %v, want 1", rejected)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })
	_ = conn.Close()
	waitFor(t, "unregistration", func() bool { return hub.ClientCount() == 0 })
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub(quietLogger(), WithAllowedOrigins([]string{"https://watch.example"}))
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://watch.example", true},
		{"https://WATCH.example", true},
		{"https://other.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := hub.checkOrigin(req); got != tt.want {
			t.Errorf("origin %q = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestLiveFrame(t *testing.T) {
	hub := NewHub(quietLogger())
	router := NewRouter(Config{
		Hub:    hub,
		Frames: raster.New(config.DefaultInvadersConfig(), 160, 120),
		Logger: quietLogger(),
	})

	pub := hub.Publisher("alice#1")
	pub.ObserveFrame(testFrame(sim.StateRunning, 4, 30))

	rec := get(t, router, "/api/live/alice%231/frame.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, expected image/png", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("bounds = %v, expected 160x120", b)
	}

	if rec := get(t, router, "/api/live/bob/frame.png"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, expected 404", rec.Code)
	}
	pub.Close()
	if rec := get(t, router, "/api/live/alice%231/frame.png"); rec.Code != http.StatusNotFound {
		t.Errorf("closed session status = %d, expected 404", rec.Code)
	}
}

func TestLiveFrameNeedsRenderer(t *testing.T) {
	hub := NewHub(quietLogger())
	hub.Publisher("alice").ObserveFrame(testFrame(sim.StateRunning, 1, 0))
	router := NewRouter(Config{Hub: hub, Logger: quietLogger()})
	if rec := get(t, router, "/api/live/alice/frame.png"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404 without a renderer", rec.Code)
	}
}
