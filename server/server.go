package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/formatter"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
)

// SnapshotSource provides the latest published snapshot.
type SnapshotSource interface {
	Latest() *tracking.Snapshot
}

// Options configures a Server.
type Options struct {
	Addr    string
	Source  SnapshotSource
	Hub     *Hub
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the HTTP rendering boundary: snapshot endpoints, websocket push
// and metrics.
type Server struct {
	src     SnapshotSource
	hub     *Hub
	metrics http.Handler
	rb      *formatter.ResponseBuilder
	cache   *responseCache
	log     *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// New builds a server. It does not listen until Start.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		src:     opts.Source,
		hub:     opts.Hub,
		metrics: opts.Metrics,
		rb:      formatter.NewResponseBuilder(),
		cache:   newResponseCache(),
		log:     log,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/vessels.json", s.handleVessels(formatJSON))
	mux.HandleFunc("/api/vessels.kml", s.handleVessels(formatKML))
	mux.HandleFunc("/api/vessels.pb", s.handleVessels(formatGTFSRT))
	mux.HandleFunc("/api/distance", s.handleDistance)
	if s.hub != nil {
		mux.Handle("/ws", s.hub)
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", "error", err)
		}
	}()
	s.log.Info("server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown disconnects websocket subscribers and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Warn("server shutdown error", "error", err)
		return err
	}
	s.log.Info("server shut down successfully")
	return nil
}
