package config

import (
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
)

// Default configuration values.
const (
	DefaultHTTPAddr  = "127.0.0.1:5180"
	DefaultRateLimit = 20
	DefaultRateBurst = 40

	DefaultContextMode = "server"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Identity:  identitytoolkit.DefaultConfig(),
		Transport: identitytoolkit.DefaultTransportConfig(),
		Server: ServerSection{
			HTTP:      HTTPConfig{Addr: DefaultHTTPAddr},
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
		Context: ContextSection{Mode: DefaultContextMode},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{Enabled: true},
	}
}

// Defaults flattens Default into dotted keys for confloader.WithDefaults.
func Defaults() map[string]any {
	d := Default()
	return map[string]any{
		"identity.endpoint":       d.Identity.Endpoint,
		"identity.token_endpoint": d.Identity.TokenEndpoint,
		"identity.continue_uri":   d.Identity.ContinueURI,
		"transport.timeout":       d.Transport.Timeout.String(),
		"transport.rate_limit":    d.Transport.RateLimit,
		"transport.burst":         d.Transport.Burst,
		"transport.user_agent":    d.Transport.UserAgent,
		"transport.ca_file":       d.Transport.CAFile,
		"server.http.addr":        d.Server.HTTP.Addr,
		"server.rate_limit":       d.Server.RateLimit,
		"server.rate_burst":       d.Server.RateBurst,
		"context.mode":            d.Context.Mode,
		"log.level":               d.Log.Level,
		"log.format":              d.Log.Format,
		"metrics.enabled":         d.Metrics.Enabled,
	}
}
