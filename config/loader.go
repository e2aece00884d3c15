package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

var searchPaths = []string{"config.yml", "./config/config.yml"}

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	var data []byte
	var err error
	for _, p := range searchPaths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// LoadFromFile loads a config file at an explicit path and makes it global
func LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	Config = cfg
	return nil
}

// Parse decodes YAML, fills defaults and validates the result
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&cfg)
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present
func Default() AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Stream.ReconnectMaxMS == 0 {
		cfg.Stream.ReconnectMaxMS = 30000
	}
	if cfg.Stream.HandshakeTimeoutMS == 0 {
		cfg.Stream.HandshakeTimeoutMS = 10000
	}
	if cfg.Registry.MaxVessels == 0 {
		cfg.Registry.MaxVessels = 10000
	}
	if cfg.Registry.Bounds == (BoundsConfig{}) {
		cfg.Registry.Bounds = BoundsConfig{MinLon: 120.036, MaxLon: 120.503, MinLat: 35.9, MaxLat: 36.3}
	}
	if cfg.Domain.SamplesPerQuadrant == 0 {
		cfg.Domain.SamplesPerQuadrant = 100
	}
	if cfg.Domain.DefaultLengthM == 0 {
		cfg.Domain.DefaultLengthM = 100
	}
	if cfg.Domain.MaxSpeedKnots == 0 {
		cfg.Domain.MaxSpeedKnots = 100
	}
	if cfg.Domain.MaxLengthM == 0 {
		cfg.Domain.MaxLengthM = 1000
	}
	if cfg.Replay.Listen == "" {
		cfg.Replay.Listen = "localhost:8080"
	}
	if cfg.Replay.IntervalMS == 0 {
		cfg.Replay.IntervalMS = 500
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "stdout"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "shipdomain"
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}
}

// SelectFeed chooses a feed by name; fallback to first; if none, use top-level stream.
func SelectFeed(name string) StreamConfig {
	if name != "" {
		for _, f := range Config.Feeds {
			if f.Name == name {
				return f.Stream
			}
		}
	}
	if len(Config.Feeds) > 0 {
		return Config.Feeds[0].Stream
	}
	return Config.Stream
}
