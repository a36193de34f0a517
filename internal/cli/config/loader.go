package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/infra/confloader"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

// DefaultConfigPath returns ~/.isoauth/cli.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".isoauth", "cli.yaml")
	}
	return filepath.Join(home, ".isoauth", "cli.yaml")
}

// Load reads path (DefaultConfigPath when empty) over the defaults, then
// ISOAUTH_* environment variables, then flags. A missing file is not an
// error.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(Defaults()),
		confloader.WithOptionalConfigFile(path),
	)

	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory. The file holds the API
// key and is private to the user.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Verify checks everything a command needs before it talks to the
// backend.
func Verify(cfg *CLIConfig) error {
	if cfg.Identity.APIKey == "" {
		return domain.ErrMissingAPIKey.WithDetails("set identity.api_key, ISOAUTH_IDENTITY__API_KEY or --api-key")
	}
	if err := cfg.Identity.Validate(); err != nil {
		return err
	}
	if err := cfg.Transport.Validate(); err != nil {
		return err
	}
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return domain.ErrInvalidConfig.WithDetails("output must be table, json or yaml")
	}
	if _, err := platform.ParseMode(cfg.Context.Mode); err != nil {
		return err
	}
	if !logger.ValidLevel(cfg.Log.Level) {
		return domain.ErrInvalidConfig.WithDetails("log.level must be debug, info, warn or error")
	}
	return nil
}

// Sanitize returns a copy safe to print.
func Sanitize(cfg *CLIConfig) *CLIConfig {
	c := *cfg
	if k := c.Identity.APIKey; k != "" {
		if len(k) > 4 {
			c.Identity.APIKey = k[:4] + "****"
		} else {
			c.Identity.APIKey = "****"
		}
	}
	return &c
}
