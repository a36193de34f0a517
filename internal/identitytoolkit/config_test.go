package identitytoolkit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.APIKey = "AIzaTest"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing key", func(c *Config) { c.APIKey = "" }, domain.ErrMissingAPIKey},
		{"relative endpoint", func(c *Config) { c.Endpoint = "relyingparty/" }, domain.ErrInvalidConfig},
		{"empty token endpoint", func(c *Config) { c.TokenEndpoint = "" }, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransportConfig_Validate(t *testing.T) {
	caFile := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(caFile, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     TransportConfig
		wantErr bool
	}{
		{"default", DefaultTransportConfig(), false},
		{"limited", TransportConfig{Timeout: time.Second, RateLimit: 5, Burst: 2}, false},
		{"negative timeout", TransportConfig{Timeout: -time.Second}, true},
		{"negative rate", TransportConfig{RateLimit: -1}, true},
		{"rate without burst", TransportConfig{RateLimit: 5}, true},
		{"ca file", TransportConfig{CAFile: caFile}, false},
		{"missing ca file", TransportConfig{CAFile: caFile + ".absent"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestEnvelope_URL(t *testing.T) {
	tests := []struct {
		name string
		env  RequestEnvelope
		base string
		want string
	}{
		{
			"relyingparty",
			RequestEnvelope{Endpoint: EndpointVerifyPassword, APIKey: "k1"},
			DefaultEndpoint,
			"https://www.googleapis.com/identitytoolkit/v3/relyingparty/verifyPassword?key=k1",
		},
		{
			"base without slash",
			RequestEnvelope{Endpoint: EndpointDeleteAccount, APIKey: "k1"},
			"http://127.0.0.1:9099/v3",
			"http://127.0.0.1:9099/v3/deleteAccount?key=k1",
		},
		{
			"key escaped",
			RequestEnvelope{Endpoint: EndpointGetAccountInfo, APIKey: "a b&c"},
			"http://h/",
			"http://h/getAccountInfo?key=a+b%26c",
		},
		{
			"secure token",
			RequestEnvelope{Endpoint: endpointSecureTokenGrant, APIKey: "k1"},
			DefaultTokenEndpoint,
			"https://securetoken.googleapis.com/v1/token?key=k1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.URL(tt.base); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}
