package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
	"github.com/theoremus-urban-solutions/ais-shipdomain/config"
	"github.com/theoremus-urban-solutions/ais-shipdomain/internal/logging"
	"github.com/theoremus-urban-solutions/ais-shipdomain/observability"
	"github.com/theoremus-urban-solutions/ais-shipdomain/palette"
	"github.com/theoremus-urban-solutions/ais-shipdomain/registry"
	"github.com/theoremus-urban-solutions/ais-shipdomain/replay"
	"github.com/theoremus-urban-solutions/ais-shipdomain/server"
	"github.com/theoremus-urban-solutions/ais-shipdomain/shipdomain"
	"github.com/theoremus-urban-solutions/ais-shipdomain/stream"
	"github.com/theoremus-urban-solutions/ais-shipdomain/tracking"
)

func main() {
	configPath := flag.String("config", "", "config file (default: search config.yml, ./config/config.yml)")
	mode := flag.String("mode", "live", "live|stdin|bounds")
	feedName := flag.String("feed", "", "feed name from config.feeds[]")
	url := flag.String("url", "", "report stream websocket URL (overrides config)")
	tracks := flag.String("tracks", "", "track CSV path or URL (bounds mode)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := loadConfig(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Config
	logging.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "bounds":
		err = printBounds(ctx, *tracks)
	case "live", "stdin":
		if *port > 0 {
			cfg.Server.Port = *port
		}
		var src tracking.Source
		if *mode == "stdin" {
			src = stream.NewReaderSource(os.Stdin)
		} else {
			sc := config.SelectFeed(*feedName)
			if *url != "" {
				sc.URL = *url
			}
			if sc.URL == "" {
				err = errors.New("no stream url: set stream.url, feeds[] or -url")
				break
			}
			ws := stream.NewWebSocketSource(stream.WebSocketOptions{
				URL:              sc.URL,
				Reconnect:        sc.Reconnect,
				MaxBackoff:       time.Duration(sc.ReconnectMaxMS) * time.Millisecond,
				HandshakeTimeout: time.Duration(sc.HandshakeTimeoutMS) * time.Millisecond,
			})
			defer ws.Close()
			src = ws
		}
		err = run(ctx, cfg, src)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		slog.Error("shipdomain failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) error {
	if path != "" {
		return config.LoadFromFile(path)
	}
	err := config.LoadAppConfig()
	if errors.Is(err, fs.ErrNotExist) {
		config.Config = config.Default()
		return nil
	}
	return err
}

func printBounds(ctx context.Context, path string) error {
	if path == "" {
		path = config.Config.Replay.TracksPath
	}
	if path == "" {
		return errors.New("bounds mode needs -tracks or replay.tracksPath")
	}
	rc, err := replay.Open(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	b, n, err := ais.TrackBounds(rc)
	if err != nil {
		return err
	}
	if b.IsEmpty() {
		return fmt.Errorf("%s: no usable lat/lng rows", path)
	}
	fmt.Printf("rows: %d\nlat: %.6f .. %.6f\nlng: %.6f .. %.6f\n", n, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	return nil
}

func run(ctx context.Context, cfg config.AppConfig, src tracking.Source) error {
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing)

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		return err
	}

	engine := shipdomain.NewEngine(cfg.Domain.SamplesPerQuadrant, cfg.Domain.MinSpeedKnots, cfg.Domain.DefaultLengthM).
		WithLimits(cfg.Domain.MaxSpeedKnots, cfg.Domain.MaxLengthM)
	hub := server.NewHub(metrics, nil)
	tracker := tracking.New(tracking.Options{
		Registry:  registry.New(cfg.Registry.Bounds.Bounds(), cfg.Registry.MaxVessels),
		Engine:    engine,
		Palette:   palette.NewAssigner(nil),
		Recorder:  metrics,
		Publisher: hub,
	})

	srv := server.New(server.Options{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Source:  tracker,
		Hub:     hub,
		Metrics: metrics.Handler(),
	})
	if err := srv.Start(); err != nil {
		return err
	}

	go func() {
		if err := tracker.Run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("report stream stopped; serving last snapshot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
