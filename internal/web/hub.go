package web

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-invaders/internal/metrics"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

const (
	// DefaultMaxSpectators caps concurrent websocket connections.
	DefaultMaxSpectators = 200

	// DefaultPublishRate is frames per second sent per game session.
	DefaultPublishRate = 10

	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Message is the envelope every spectator receives.
type Message struct {
	Event   string `json:"event"` // "frame" or "session:end"
	Session string `json:"session"`
	Data    any    `json:"data,omitempty"`
}

// LiveSession is the latest known state of one game session.
type LiveSession struct {
	Session   string    `json:"session"`
	Mode      string    `json:"mode"`
	State     sim.State `json:"state"`
	Score     int       `json:"score"`
	HP        int       `json:"hp"`
	Tick      uint64    `json:"tick"`
	UpdatedAt time.Time `json:"updated_at"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithMaxSpectators sets the connection limit.
func WithMaxSpectators(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.max = n
		}
	}
}

// WithPublishRate sets how many frames per second each session publishes.
// State changes are always published.
func WithPublishRate(hz float64) HubOption {
	return func(h *Hub) {
		if hz > 0 {
			h.rate = rate.Limit(hz)
		}
	}
}

// WithAllowedOrigins restricts websocket upgrades to the given origins.
// Empty means any origin.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) { h.origins = origins }
}

// WithRecorder attaches spectator metrics.
func WithRecorder(r *metrics.Recorder) HubOption {
	return func(h *Hub) { h.rec = r }
}

// Hub fans game frames out to websocket spectators.
// Run owns the client set; everything else talks to it through channels.
type Hub struct {
	log     *log.Logger
	rec     *metrics.Recorder
	max     int
	rate    rate.Limit
	origins []string

	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*client]struct{}
	live    map[string]LiveSession
	frames  map[string]sim.Snapshot
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(logger *log.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		log:        logger,
		max:        DefaultMaxSpectators,
		rate:       rate.Limit(DefaultPublishRate),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		live:       make(map[string]LiveSession),
		frames:     make(map[string]sim.Snapshot),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.ContainsFunc(h.origins, func(o string) bool {
		return o == "*" || strings.EqualFold(o, origin)
	})
}

// Run serves register, unregister and broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.updateGauge(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("spectator connected", "remote", c.conn.RemoteAddr(), "total", n)
			h.updateGauge(n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("spectator disconnected", "total", n)
			h.updateGauge(n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow reader: drop it rather than stall every session.
					delete(h.clients, c)
					close(c.send)
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.updateGauge(n)
			if h.rec != nil {
				h.rec.SpectatorMessage()
			}
		}
	}
}

func (h *Hub) updateGauge(n int) {
	if h.rec != nil {
		h.rec.SetSpectators(n)
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Sessions returns the latest state of every publishing session, by name.
func (h *Hub) Sessions() []LiveSession {
	h.mu.RLock()
	out := make([]LiveSession, 0, len(h.live))
	for _, s := range h.live {
		out = append(out, s)
	}
	h.mu.RUnlock()
	slices.SortFunc(out, func(a, b LiveSession) int { return strings.Compare(a.Session, b.Session) })
	return out
}

// Snapshot returns the latest snapshot published by session.
func (h *Hub) Snapshot(session string) (sim.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snap, ok := h.frames[session]
	return snap, ok
}

// Broadcast queues a message for every spectator. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.log.Error("encode spectator message", "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

// HandleWS upgrades a spectator connection. Spectators are read-only; any
// message they send is discarded.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= h.max {
		h.reject("limit")
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.reject("upgrade")
		h.log.Debug("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) reject(reason string) {
	if h.rec != nil {
		h.rec.SpectatorRejected(reason)
	}
}

func (h *Hub) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publisher returns a frame observer that streams one session to spectators.
// Call Close when the session ends.
func (h *Hub) Publisher(session string) *Publisher {
	return &Publisher{
		hub:     h,
		session: session,
		lim:     rate.NewLimiter(h.rate, 1),
	}
}

// Publisher is a rate-limited sim.FrameObserver bound to one session.
type Publisher struct {
	hub     *Hub
	session string
	lim     *rate.Limiter
	last    sim.State
	once    sync.Once
}

// ObserveFrame implements sim.FrameObserver.
func (p *Publisher) ObserveFrame(f sim.Frame) {
	snap := f.Snapshot
	p.hub.mu.Lock()
	p.hub.live[p.session] = LiveSession{
		Session:   p.session,
		Mode:      f.Mode,
		State:     snap.State,
		Score:     snap.Score,
		HP:        snap.HP,
		Tick:      snap.Tick,
		UpdatedAt: time.Now(),
	}
	p.hub.frames[p.session] = snap
	p.hub.mu.Unlock()

	allowed := p.lim.Allow()
	changed := snap.State != p.last
	p.last = snap.State
	if !allowed && !changed {
		return
	}
	p.hub.Broadcast(Message{Event: "frame", Session: p.session, Data: f})
}

// Close announces the end of the session and forgets its live state.
func (p *Publisher) Close() {
	p.once.Do(func() {
		p.hub.mu.Lock()
		delete(p.hub.live, p.session)
		delete(p.hub.frames, p.session)
		p.hub.mu.Unlock()
		p.hub.Broadcast(Message{Event: "session:end", Session: p.session})
	})
}
