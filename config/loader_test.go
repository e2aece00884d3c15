package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	origConfig := Config
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		Config = origConfig
		_ = os.Chdir(origDir)
	})
	return tmpDir
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	chdirTemp(t)

	if err := LoadAppConfig(); err == nil {
		t.Error("Expected error when config.yml is missing")
	}
	t.Logf("✓ Missing config file reported")
}

func TestLoadAppConfig_InvalidYAML(t *testing.T) {
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("invalid: yaml: content: [[["), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if err := LoadAppConfig(); err == nil {
		t.Error("Expected error for invalid YAML")
	}
	t.Logf("✓ Invalid YAML rejected")
}

func TestLoadAppConfig_SearchesConfigDir(t *testing.T) {
	dir := chdirTemp(t)

	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte("server:\n  port: 9000\nregistry:\n  maxVessels: 50\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if Config.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", Config.Server.Port)
	}
	if Config.Registry.MaxVessels != 50 {
		t.Errorf("MaxVessels = %d, want 50", Config.Registry.MaxVessels)
	}
	t.Logf("✓ config/config.yml picked up")
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse empty: %v", err)
	}
	def := Default()
	if cfg.Server.Port != 16181 || def.Server.Port != 16181 {
		t.Errorf("Port = %d/%d, want 16181", cfg.Server.Port, def.Server.Port)
	}
	if cfg.Registry.MaxVessels != 10000 {
		t.Errorf("MaxVessels = %d, want 10000", cfg.Registry.MaxVessels)
	}
	b := cfg.Registry.Bounds.Bounds()
	if b.MinLon != 120.036 || b.MaxLon != 120.503 || b.MinLat != 35.9 || b.MaxLat != 36.3 {
		t.Errorf("Bounds = %+v", b)
	}
	if cfg.Domain.SamplesPerQuadrant != 100 || cfg.Domain.DefaultLengthM != 100 ||
		cfg.Domain.MaxSpeedKnots != 100 || cfg.Domain.MaxLengthM != 1000 {
		t.Errorf("Domain = %+v", cfg.Domain)
	}
	if cfg.Replay.IntervalMS != 500 {
		t.Errorf("IntervalMS = %d, want 500", cfg.Replay.IntervalMS)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should be off by default")
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"inverted bounds", "registry:\n  bounds:\n    minLon: 121\n    maxLon: 120\n    minLat: 35\n    maxLat: 36\n"},
		{"too few samples", "domain:\n  samplesPerQuadrant: 1\n"},
		{"negative speed floor", "domain:\n  minSpeedKnots: -1\n"},
		{"negative speed cap", "domain:\n  maxSpeedKnots: -5\n"},
		{"unknown log level", "logging:\n  level: verbose\n"},
		{"unknown exporter", "tracing:\n  exporter: zipkin\n"},
		{"sample ratio above one", "tracing:\n  sampleRatio: 2\n"},
		{"feed without name", "feeds:\n  - stream:\n      url: ws://localhost:8080\n"},
		{"bad stream url", "stream:\n  url: not a url\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("expected validation error for %q", tt.yaml)
			}
		})
	}
}

func TestSelectFeed(t *testing.T) {
	chdirTemp(t)

	Config = Default()
	Config.Stream.URL = "ws://top"
	if got := SelectFeed("any"); got.URL != "ws://top" {
		t.Errorf("no feeds: got %q, want top-level stream", got.URL)
	}

	Config.Feeds = []Feed{
		{Name: "a", Stream: StreamConfig{URL: "ws://a"}},
		{Name: "b", Stream: StreamConfig{URL: "ws://b"}},
	}
	if got := SelectFeed("b"); got.URL != "ws://b" {
		t.Errorf("SelectFeed(b) = %q", got.URL)
	}
	if got := SelectFeed("missing"); got.URL != "ws://a" {
		t.Errorf("SelectFeed(missing) = %q, want first feed", got.URL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yml")
	data := []byte("domain:\n  samplesPerQuadrant: 10\n  minSpeedKnots: 0.5\nlogging:\n  format: json\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if Config.Domain.SamplesPerQuadrant != 10 || Config.Domain.MinSpeedKnots != 0.5 {
		t.Errorf("Domain = %+v", Config.Domain)
	}
	if Config.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", Config.Logging.Format)
	}
}
