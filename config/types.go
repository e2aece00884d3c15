package config

import "github.com/theoremus-urban-solutions/ais-shipdomain/geo"

// ServerConfig contains the HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// StreamConfig describes where live report lines come from
type StreamConfig struct {
	URL                string `yaml:"url" validate:"omitempty,url"`
	Reconnect          bool   `yaml:"reconnect"`
	ReconnectMaxMS     int    `yaml:"reconnectMaxMS" validate:"gte=0"`
	HandshakeTimeoutMS int    `yaml:"handshakeTimeoutMS" validate:"gte=0"`
}

// Feed is a named stream that can be picked with -feed
type Feed struct {
	Name   string       `yaml:"name" validate:"required"`
	Stream StreamConfig `yaml:"stream" validate:"required"`
}

// BoundsConfig is the admission box in degrees
type BoundsConfig struct {
	MinLon float64 `yaml:"minLon" validate:"gte=-180,lte=180"`
	MaxLon float64 `yaml:"maxLon" validate:"gte=-180,lte=180,gtefield=MinLon"`
	MinLat float64 `yaml:"minLat" validate:"gte=-90,lte=90"`
	MaxLat float64 `yaml:"maxLat" validate:"gte=-90,lte=90,gtefield=MinLat"`
}

// Bounds converts the configured box to geo.Bounds
func (b BoundsConfig) Bounds() geo.Bounds {
	return geo.Bounds{MinLon: b.MinLon, MaxLon: b.MaxLon, MinLat: b.MinLat, MaxLat: b.MaxLat}
}

// RegistryConfig contains vessel registry limits
type RegistryConfig struct {
	MaxVessels int          `yaml:"maxVessels" validate:"gt=0"`
	Bounds     BoundsConfig `yaml:"bounds"`
}

// DomainConfig contains ship domain engine parameters
type DomainConfig struct {
	SamplesPerQuadrant int     `yaml:"samplesPerQuadrant" validate:"gte=2"`
	MinSpeedKnots      float64 `yaml:"minSpeedKnots" validate:"gte=0"` // 0 = smallest positive float
	DefaultLengthM     float64 `yaml:"defaultLengthM" validate:"gt=0"`
	MaxSpeedKnots      float64 `yaml:"maxSpeedKnots" validate:"gt=0"`
	MaxLengthM         float64 `yaml:"maxLengthM" validate:"gt=0"`
}

// ReplayConfig contains the replay feed server configuration
type ReplayConfig struct {
	Listen      string `yaml:"listen"`
	TracksPath  string `yaml:"tracksPath"`
	LengthsPath string `yaml:"lengthsPath"`
	IntervalMS  int    `yaml:"intervalMS" validate:"gte=0"`
}

// LoggingConfig selects log level and handler
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// TracingConfig governs OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter" validate:"omitempty,oneof=stdout otlp"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"serviceName"`
	SampleRatio float64 `yaml:"sampleRatio" validate:"gte=0,lte=1"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Stream   StreamConfig   `yaml:"stream"`
	Feeds    []Feed         `yaml:"feeds" validate:"dive"`
	Registry RegistryConfig `yaml:"registry"`
	Domain   DomainConfig   `yaml:"domain"`
	Replay   ReplayConfig   `yaml:"replay"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}
