package logger

import (
	"log/slog"
	"strings"
)

// Attribute keys whose string values are never logged verbatim.
// Matching is by substring on the lowercased key, so "id_token",
// "refresh_token" and "new_password" are all covered.
var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"key",
	"oobcode",
	"oob_code",
	"credential",
	"authorization",
}

// jwtPrefix starts every base64url-encoded JWT header ({"alg":...).
const jwtPrefix = "eyJ"

const redacted = "***REDACTED***"

func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if strings.HasPrefix(v, jwtPrefix) {
			return slog.String(a.Key, MaskJWT(v))
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redacted)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// MaskJWT keeps the first and last four characters of a token.
func MaskJWT(v string) string {
	if len(v) <= 12 {
		return jwtPrefix + "***"
	}
	return v[:4] + "..." + v[len(v)-4:]
}

// RedactString masks v if it looks like a JWT and returns it unchanged
// otherwise.
func RedactString(v string) string {
	if strings.HasPrefix(v, jwtPrefix) {
		return MaskJWT(v)
	}
	return v
}

// IsSensitiveKey reports whether an attribute key names secret material.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeys {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}
