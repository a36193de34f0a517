package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/infra/confloader"
)

func validConfig() *ServerConfig {
	cfg := Default()
	cfg.Identity.APIKey = "AIzaSyExampleKey"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Context.Mode != DefaultContextMode {
		t.Errorf("Context.Mode = %q, want %q", cfg.Context.Mode, DefaultContextMode)
	}
	if cfg.Identity.Endpoint == "" || cfg.Identity.TokenEndpoint == "" {
		t.Error("identity endpoints should default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.Tracing.Endpoint != "" {
		t.Error("tracing export should be off by default")
	}
}

func TestVerify(t *testing.T) {
	certDir := t.TempDir()
	cert := filepath.Join(certDir, "cert.pem")
	if err := os.WriteFile(cert, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr error
	}{
		{"valid", func(*ServerConfig) {}, nil},
		{"missing api key", func(c *ServerConfig) { c.Identity.APIKey = "" }, domain.ErrMissingAPIKey},
		{"bad endpoint", func(c *ServerConfig) { c.Identity.Endpoint = "not a url" }, domain.ErrInvalidConfig},
		{"bad addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "nohostport" }, domain.ErrInvalidConfig},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = cert }, domain.ErrInvalidConfig},
		{"missing tls file", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = cert
			c.Server.HTTP.TLSKeyFile = filepath.Join(certDir, "absent.pem")
		}, domain.ErrInvalidConfig},
		{"negative rate", func(c *ServerConfig) { c.Server.RateLimit = -1 }, domain.ErrInvalidConfig},
		{"zero burst", func(c *ServerConfig) { c.Server.RateBurst = 0 }, domain.ErrInvalidConfig},
		{"unlimited zero burst", func(c *ServerConfig) { c.Server.RateLimit, c.Server.RateBurst = 0, 0 }, nil},
		{"bad mode", func(c *ServerConfig) { c.Context.Mode = "browser" }, domain.ErrInvalidConfig},
		{"client mode", func(c *ServerConfig) { c.Context.Mode = "client" }, domain.ErrInvalidConfig},
		{"auto mode", func(c *ServerConfig) { c.Context.Mode = "auto" }, domain.ErrInvalidConfig},
		{"empty mode", func(c *ServerConfig) { c.Context.Mode = "" }, domain.ErrInvalidConfig},
		{"server mode any case", func(c *ServerConfig) { c.Context.Mode = " Server " }, nil},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "loud" }, domain.ErrInvalidConfig},
		{"bad tracing endpoint", func(c *ServerConfig) { c.Tracing.Endpoint = "collector" }, domain.ErrInvalidConfig},
		{"tracing endpoint", func(c *ServerConfig) { c.Tracing.Endpoint = "http://localhost:4318" }, nil},
		{"negative transport timeout", func(c *ServerConfig) { c.Transport.Timeout = -1 }, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := validConfig()
	cfg.Server.CORSOrigins = []string{"https://app.example"}

	s := Sanitize(cfg)
	if cfg.Identity.APIKey != "AIzaSyExampleKey" {
		t.Error("Sanitize modified the original")
	}
	if s.Identity.APIKey == cfg.Identity.APIKey || !strings.HasPrefix(s.Identity.APIKey, "AI") {
		t.Errorf("masked key = %q", s.Identity.APIKey)
	}
	if len(s.Identity.APIKey) != len(cfg.Identity.APIKey) {
		t.Error("masked key should keep its length")
	}

	s.Server.CORSOrigins[0] = "changed"
	if cfg.Server.CORSOrigins[0] != "https://app.example" {
		t.Error("Sanitize shares the origins slice")
	}
}

func TestMaskSecret_Short(t *testing.T) {
	if got := maskSecret("abc"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := "identity:\n  api_key: file-key\nserver:\n  cors_origins: [\"https://a.example\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ISOAUTH_SERVER__HTTP__ADDR", "0.0.0.0:9999")
	t.Setenv("ISOAUTH_TRANSPORT__TIMEOUT", "5s")

	var cfg ServerConfig
	l := confloader.NewLoader(confloader.WithConfigFile(path), confloader.WithDefaults(Defaults()))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Identity.APIKey != "file-key" {
		t.Errorf("api key = %q", cfg.Identity.APIKey)
	}
	if cfg.Server.HTTP.Addr != "0.0.0.0:9999" {
		t.Errorf("addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Transport.Timeout.String() != "5s" {
		t.Errorf("timeout = %v", cfg.Transport.Timeout)
	}
	if cfg.Identity.Endpoint != Default().Identity.Endpoint {
		t.Errorf("endpoint = %q, want default", cfg.Identity.Endpoint)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if err := Verify(&cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}
