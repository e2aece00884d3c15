package server

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/theoremus-urban-solutions/ais-shipdomain/formatter"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
)

const writeTimeout = 10 * time.Second

// SubscriberGauge receives the current subscriber count.
type SubscriberGauge interface {
	SetSubscribers(n int)
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes every published snapshot to websocket subscribers as the JSON
// aggregate. Publish never blocks: each subscriber holds at most one pending
// payload and a newer one replaces it.
type Hub struct {
	upgrader websocket.Upgrader
	rb       *formatter.ResponseBuilder
	gauge    SubscriberGauge
	log      *slog.Logger
	last     atomic.Pointer[tracking.Snapshot]

	mu   sync.Mutex
	subs map[string]*subscriber
}

// NewHub returns a hub. gauge may be nil.
func NewHub(gauge SubscriberGauge, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rb:       formatter.NewResponseBuilder(),
		gauge:    gauge,
		log:      log,
		subs:     map[string]*subscriber{},
	}
}

// Publish implements tracking.Publisher. The snapshot is also kept for
// subscribers that connect later.
func (h *Hub) Publish(snap *tracking.Snapshot) {
	h.last.Store(snap)
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}
	payload, err := h.encode(snap)
	if err != nil {
		h.log.Error("snapshot not pushed", "seq", snap.Seq, "error", err)
		return
	}
	for _, s := range h.subs {
		offer(s.send, payload)
	}
}

func (h *Hub) encode(snap *tracking.Snapshot) ([]byte, error) {
	return h.rb.BuildJSON(formatter.WrapSnapshot(snap))
}

// offer puts payload on ch, replacing a pending payload if ch is full.
func offer(ch chan []byte, payload []byte) {
	select {
	case ch <- payload:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- payload:
	default:
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams snapshots until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	s := &subscriber{id: uuid.NewString(), conn: conn, send: make(chan []byte, 1)}
	h.add(s)
	h.log.Info("subscriber connected", "id", s.id, "remote", r.RemoteAddr)

	go h.writeLoop(s)

	// Inbound messages are ignored; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(s)
	h.log.Info("subscriber disconnected", "id", s.id)
}

func (h *Hub) writeLoop(s *subscriber) {
	for payload := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("subscriber write failed", "id", s.id, "error", err)
			_ = s.conn.Close()
			return
		}
	}
}

// add registers s and queues the last published snapshot for it. Both happen
// under mu, so a concurrent Publish either sees s or stored its snapshot
// before the load here.
func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s.id] = s
	if snap := h.last.Load(); snap != nil {
		if payload, err := h.encode(snap); err != nil {
			h.log.Error("snapshot not pushed", "seq", snap.Seq, "error", err)
		} else {
			offer(s.send, payload)
		}
	}
	n := len(h.subs)
	h.mu.Unlock()
	if h.gauge != nil {
		h.gauge.SetSubscribers(n)
	}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, s.id)
	close(s.send)
	n := len(h.subs)
	h.mu.Unlock()
	_ = s.conn.Close()
	if h.gauge != nil {
		h.gauge.SetSubscribers(n)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(s)
	}
}
