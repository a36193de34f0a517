package config

import (
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
)

// CLIConfig is the isoauth-cli configuration.
type CLIConfig struct {
	Identity  identitytoolkit.Config          `koanf:"identity" yaml:"identity"`
	Transport identitytoolkit.TransportConfig `koanf:"transport" yaml:"transport"`

	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	Context ContextConfig `koanf:"context" yaml:"context"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
}

// ContextConfig selects the execution context for one-shot commands.
type ContextConfig struct {
	Mode string `koanf:"mode" yaml:"mode"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Identity:  identitytoolkit.DefaultConfig(),
		Transport: identitytoolkit.DefaultTransportConfig(),
		Output:    "table",
		Context:   ContextConfig{Mode: "server"},
		Log:       LogConfig{Level: "warn", Format: "text"},
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
		"output":                  d.Output,
		"context.mode":            d.Context.Mode,
		"log.level":               d.Log.Level,
		"log.format":              d.Log.Format,
	}
}
