package localsdk

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshSkew is how long before expiry a cached token is replaced.
const refreshSkew = 5 * time.Minute

// idTokenClaims is the subset of ID token claims the SDK reads.
type idTokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// tokenExpiry reads exp from an ID token without verifying its
// signature. Tokens are verified by the backend that receives them; the
// SDK only needs to know when to refresh. When exp is unreadable the
// expiresIn hint from the issuing response is used.
func tokenExpiry(idToken string, expiresIn time.Duration, now time.Time) time.Time {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn <= 0 {
		return now
	}
	return now.Add(expiresIn)
}

// tokenUID returns the user_id (or sub) claim of an ID token, or "".
func tokenUID(idToken string) string {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return ""
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return claims.Subject
}
