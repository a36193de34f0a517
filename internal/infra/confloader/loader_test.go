package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Identity struct {
		APIKey   string `koanf:"api_key"`
		Endpoint string `koanf:"endpoint"`
	} `koanf:"identity"`
	Server struct {
		HTTP struct {
			Addr string `koanf:"addr"`
		} `koanf:"http"`
		RateLimit float64 `koanf:"rate_limit"`
	} `koanf:"server"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()
	tests := map[string]string{
		"ISOAUTH_IDENTITY__API_KEY":  "identity.api_key",
		"ISOAUTH_SERVER__HTTP__ADDR": "server.http.addr",
		"ISOAUTH_LOG__LEVEL":         "log.level",
		"ISOAUTH_DEBUG":              "debug",
	}
	for in, want := range tests {
		if got := l.envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoader_Load_Layers(t *testing.T) {
	path := writeConfig(t, `
identity:
  api_key: from-file
  endpoint: https://file.example/
server:
  http:
    addr: ":9000"
`)
	t.Setenv("ISOAUTH_IDENTITY__API_KEY", "from-env")

	l := NewLoader(
		WithConfigFile(path),
		WithDefaults(map[string]any{
			"server.http.addr":  ":8080",
			"server.rate_limit": 5.0,
			"log.level":         "info",
		}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"log.level": "debug"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Identity.APIKey != "from-env" {
		t.Errorf("api_key = %q, env should override file", cfg.Identity.APIKey)
	}
	if cfg.Identity.Endpoint != "https://file.example/" {
		t.Errorf("endpoint = %q", cfg.Identity.Endpoint)
	}
	if cfg.Server.HTTP.Addr != ":9000" {
		t.Errorf("addr = %q, file should override default", cfg.Server.HTTP.Addr)
	}
	if cfg.Server.RateLimit != 5 {
		t.Errorf("rate_limit = %v, want default 5", cfg.Server.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, overrides should win", cfg.Log.Level)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(missing)).Load(&cfg); err == nil {
		t.Error("Load() should fail for a missing required file")
	}
	if err := NewLoader(WithOptionalConfigFile(missing)).Load(&cfg); err != nil {
		t.Errorf("Load() with optional file error = %v", err)
	}
}

func TestLoader_Load_BadYAML(t *testing.T) {
	path := writeConfig(t, "identity: [unclosed")
	var cfg testConfig
	if err := NewLoader(WithOptionalConfigFile(path)).Load(&cfg); err == nil {
		t.Error("Load() should fail for malformed YAML even when optional")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER__HTTP__ADDR", ":7070")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("server.http.addr"); got != ":7070" {
		t.Errorf("server.http.addr = %q, want :7070", got)
	}
}

func TestLoader_Getters(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"a.port": 8080, "a.on": true, "a.name": "x"}); err != nil {
		t.Fatal(err)
	}
	if l.GetInt("a.port") != 8080 || !l.GetBool("a.on") || l.GetString("a.name") != "x" {
		t.Error("getter mismatch")
	}
	if l.Get("a.missing") != nil {
		t.Error("Get() of a missing key should be nil")
	}
	if len(l.Keys()) != 3 {
		t.Errorf("Keys() = %v", l.Keys())
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}
