package replay

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultInterval is the pause between two lines sent to one client.
const DefaultInterval = 500 * time.Millisecond

// EmptyFeedMessage is sent before closing when there is nothing to replay.
const EmptyFeedMessage = "error: no track data could be read or parsed"

// Server streams the feed to each websocket client independently, looping
// from the start when it reaches the end.
type Server struct {
	feed     *Feed
	interval time.Duration
	upgrader websocket.Upgrader
	log      *slog.Logger
	clients  atomic.Int64
}

// NewServer returns a replay server. interval <= 0 selects DefaultInterval.
func NewServer(feed *Feed, interval time.Duration, log *slog.Logger) *Server {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		feed:     feed,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin:  func(r *http.Request) bool { return true },
			Subprotocols: []string{"binary"},
		},
		log: log,
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int { return int(s.clients.Load()) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	n := s.clients.Add(1)
	s.log.Info("client connected", "remote", r.RemoteAddr, "clients", n)
	defer func() {
		s.log.Info("client disconnected", "remote", r.RemoteAddr, "clients", s.clients.Add(-1))
	}()

	if s.feed.Len() == 0 {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(EmptyFeedMessage))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.stream(ctx, conn)
}

func (s *Server) stream(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(s.feed.Lines) {
		line := s.feed.Lines[i]
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			s.log.Debug("client write failed", "error", err)
			return
		}
		s.log.Debug("sent line", "line", line)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
