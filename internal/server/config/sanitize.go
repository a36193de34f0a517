package config

import "strings"

// Sanitize returns a copy of cfg with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	if sanitized.Identity.APIKey != "" {
		sanitized.Identity.APIKey = maskSecret(sanitized.Identity.APIKey)
	}
	sanitized.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	return &sanitized
}

// maskSecret keeps the first and last two characters.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
