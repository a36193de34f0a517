// Package config provides isoauth-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values, also flattened for confloader
//   - verify.go: validation
//   - sanitize.go: masks the API key for logging
//
// Configuration is loaded via internal/infra/confloader from a YAML
// file, ISOAUTH_ environment variables and flags.
package config
