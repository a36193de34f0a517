package config

import (
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
)

// ServerConfig is the root configuration for isoauth-server.
type ServerConfig struct {
	Identity  identitytoolkit.Config          `koanf:"identity"`
	Transport identitytoolkit.TransportConfig `koanf:"transport"`
	Server    ServerSection                   `koanf:"server"`
	Context   ContextSection                  `koanf:"context"`
	Log       LogSection                      `koanf:"log"`
	Metrics   MetricsSection                  `koanf:"metrics"`
	Tracing   TracingSection                  `koanf:"tracing"`
}

// ServerSection configures the HTTP gateway.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`

	// RateLimit is requests per second allowed per client IP; 0 disables
	// gateway limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// ContextSection selects the execution context reported to the
// dispatcher.
type ContextSection struct {
	Mode string `koanf:"mode"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures /metrics.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// TracingSection configures span export.
type TracingSection struct {
	// Endpoint is an OTLP/HTTP collector URL. Empty disables export.
	Endpoint string `koanf:"endpoint"`
}
