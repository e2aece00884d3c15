package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/config"
	"github.com/theoremus-urban-solutions/ais-shipdomain/internal/logging"
	"github.com/theoremus-urban-solutions/ais-shipdomain/replay"
)

func main() {
	configPath := flag.String("config", "", "config file (default: search config.yml, ./config/config.yml)")
	listen := flag.String("listen", "", "listen address (overrides replay.listen)")
	tracks := flag.String("tracks", "", "track CSV path or URL (overrides replay.tracksPath)")
	lengths := flag.String("lengths", "", "length table CSV path or URL (overrides replay.lengthsPath)")
	interval := flag.Duration("interval", 0, "pause between lines (overrides replay.intervalMS)")
	flag.Parse()

	var err error
	if *configPath != "" {
		err = config.LoadFromFile(*configPath)
	} else if err = config.LoadAppConfig(); errors.Is(err, fs.ErrNotExist) {
		config.Config, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Config
	logging.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	rc := cfg.Replay
	if *listen != "" {
		rc.Listen = *listen
	}
	if *tracks != "" {
		rc.TracksPath = *tracks
	}
	if *lengths != "" {
		rc.LengthsPath = *lengths
	}
	every := time.Duration(rc.IntervalMS) * time.Millisecond
	if *interval > 0 {
		every = *interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed, err := replay.Load(ctx, replay.LoadOptions{
		TracksPath:  rc.TracksPath,
		LengthsPath: rc.LengthsPath,
		Bounds:      cfg.Registry.Bounds.Bounds(),
	})
	if err != nil {
		// clients are told the feed is empty instead
		slog.Error("track data not loaded", "error", err)
	}

	srv := &http.Server{
		Addr:              rc.Listen,
		Handler:           replay.NewServer(feed, every, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()
	slog.Info("replay server listening", "addr", rc.Listen, "lines", feed.Len(), "interval", every)

	<-ctx.Done()
	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown error", "error", err)
	}
}
