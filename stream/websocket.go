package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketOptions configures a WebSocketSource.
type WebSocketOptions struct {
	URL              string
	Reconnect        bool
	MinBackoff       time.Duration // default 1s
	MaxBackoff       time.Duration // default 60s
	HandshakeTimeout time.Duration // default 10s
	Logger           *slog.Logger
}

// WebSocketSource reads report lines from a websocket. Without Reconnect the
// first dial or read failure ends the stream; with it, the source redials with
// exponential backoff until ctx is done. Next must be called from one
// goroutine; Close may be called from any.
type WebSocketSource struct {
	opts   WebSocketOptions
	dialer *websocket.Dialer
	log    *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	stop   chan struct{}
	closed bool

	pending []string
}

// NewWebSocketSource returns a source that dials lazily on the first Next.
func NewWebSocketSource(opts WebSocketOptions) *WebSocketSource {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 60 * time.Second
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &WebSocketSource{
		opts:   opts,
		dialer: &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		log:    log.With("url", opts.URL),
	}
}

// Next returns the next non-blank line. A normal close from the server ends
// the stream with io.EOF unless Reconnect is set.
func (s *WebSocketSource) Next(ctx context.Context) (string, error) {
	for {
		if len(s.pending) > 0 {
			line := s.pending[0]
			s.pending = s.pending[1:]
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			s.drop()
			return "", err
		}
		conn, closed := s.current()
		if closed {
			return "", io.EOF
		}
		if conn == nil {
			if err := s.connect(ctx); err != nil {
				return "", err
			}
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.drop()
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if _, closed := s.current(); closed {
				return "", io.EOF
			}
			if !s.opts.Reconnect {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return "", io.EOF
				}
				return "", fmt.Errorf("stream: read: %w", err)
			}
			s.log.Warn("stream read failed, reconnecting", "error", err, "retry_in", s.opts.MinBackoff)
			if err := sleep(ctx, s.opts.MinBackoff); err != nil {
				return "", err
			}
			continue
		}
		s.pending = splitLines(msg)
	}
}

// Close closes the current connection, if any. A blocked Next returns and
// later calls report io.EOF.
func (s *WebSocketSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.drop()
	return nil
}

func (s *WebSocketSource) current() (*websocket.Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn, s.closed
}

func (s *WebSocketSource) connect(ctx context.Context) error {
	backoff := s.opts.MinBackoff
	for {
		s.log.Info("connecting to report stream")
		c, _, err := s.dialer.DialContext(ctx, s.opts.URL, nil)
		if err == nil {
			s.attach(ctx, c)
			return nil
		}
		if _, closed := s.current(); closed {
			return io.EOF
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.opts.Reconnect {
			return fmt.Errorf("stream: dial %s: %w", s.opts.URL, err)
		}

		s.log.Warn("dial failed", "error", err, "retry_in", backoff)
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
		if backoff > s.opts.MaxBackoff {
			backoff = s.opts.MaxBackoff
		}
	}
}

// attach installs c and closes it when ctx is done so a blocked
// ReadMessage returns.
func (s *WebSocketSource) attach(ctx context.Context, c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = c.Close()
		return
	}
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-stop:
		}
	}()
	s.conn = c
	s.stop = stop
}

func (s *WebSocketSource) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	close(s.stop)
	_ = s.conn.Close()
	s.conn = nil
	s.stop = nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func splitLines(msg []byte) []string {
	parts := strings.Split(string(msg), "\n")
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
