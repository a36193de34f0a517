package identitytoolkit

import (
	"net/url"
	"os"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

const (
	// DefaultEndpoint is the relyingparty base URL.
	DefaultEndpoint = "https://www.googleapis.com/identitytoolkit/v3/relyingparty/"
	// DefaultTokenEndpoint exchanges refresh tokens for ID tokens.
	DefaultTokenEndpoint = "https://securetoken.googleapis.com/v1/token"
	// DefaultContinueURI is sent with createAuthUri.
	DefaultContinueURI = "http://localhost"
)

// Config is the identity.* configuration section.
type Config struct {
	APIKey        string `koanf:"api_key" yaml:"api_key"`
	Endpoint      string `koanf:"endpoint" yaml:"endpoint"`
	TokenEndpoint string `koanf:"token_endpoint" yaml:"token_endpoint"`
	ContinueURI   string `koanf:"continue_uri" yaml:"continue_uri"`
}

// TransportConfig is the transport.* configuration section.
type TransportConfig struct {
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	// RateLimit is the client-side request budget per second; 0 disables it.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	Burst     int     `koanf:"burst" yaml:"burst"`
	UserAgent string  `koanf:"user_agent" yaml:"user_agent"`
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// DefaultConfig returns the public Google endpoints with no API key.
func DefaultConfig() Config {
	return Config{
		Endpoint:      DefaultEndpoint,
		TokenEndpoint: DefaultTokenEndpoint,
		ContinueURI:   DefaultContinueURI,
	}
}

// DefaultTransportConfig returns a 30s timeout with limiting disabled.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:   30 * time.Second,
		Burst:     10,
		UserAgent: "isoauth/1.0",
	}
}

// Validate checks that the API key is set and the endpoints parse.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	if err := checkURL("identity.endpoint", c.Endpoint); err != nil {
		return err
	}
	return checkURL("identity.token_endpoint", c.TokenEndpoint)
}

// Validate checks the transport limits.
func (c TransportConfig) Validate() error {
	if c.Timeout < 0 {
		return domain.ErrInvalidConfig.WithDetails("transport.timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return domain.ErrInvalidConfig.WithDetails("transport.rate_limit must not be negative")
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		return domain.ErrInvalidConfig.WithDetails("transport.burst must be at least 1 when rate_limit is set")
	}
	if c.CAFile != "" {
		if _, err := os.Stat(c.CAFile); err != nil {
			return domain.ErrInvalidConfig.WithDetails("transport.ca_file: " + err.Error())
		}
	}
	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.ErrInvalidConfig.WithDetails(name + " must be an absolute URL")
	}
	return nil
}
