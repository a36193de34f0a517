package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters Fingerprint keeps.
const FingerprintLength = 12

// Fingerprint returns a short SHA-256 prefix of secret, or "" for an
// empty secret.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
