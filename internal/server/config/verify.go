package config

import (
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

// Verify validates the configuration. An empty API key fails with
// domain.ErrMissingAPIKey; every other problem with ErrInvalidConfig.
func Verify(cfg *ServerConfig) error {
	if cfg.Identity.APIKey == "" {
		return domain.ErrMissingAPIKey.WithDetails("set identity.api_key or ISOAUTH_IDENTITY__API_KEY")
	}
	if err := cfg.Identity.Validate(); err != nil {
		return err
	}
	if err := cfg.Transport.Validate(); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return domain.ErrInvalidConfig.WithDetails(err.Error())
	}
	mode, err := platform.ParseMode(cfg.Context.Mode)
	if err != nil {
		return domain.ErrInvalidConfig.WithDetails(err.Error())
	}
	// The gateway only wires the server backend.
	if mode != platform.ModeServer {
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("context.mode must be %q for the gateway, got %q", platform.ModeServer, mode))
	}
	if !logger.ValidLevel(cfg.Log.Level) {
		return domain.ErrInvalidConfig.WithDetails("log.level must be debug, info, warn or error")
	}
	if cfg.Tracing.Endpoint != "" {
		if u, err := url.Parse(cfg.Tracing.Endpoint); err != nil || u.Host == "" {
			return domain.ErrInvalidConfig.WithDetails("tracing.endpoint is not a URL")
		}
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return fmt.Errorf("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1")
	}
	return nil
}
