package broadcast

import "github.com/yndnr/isoauth-go/internal/core/domain"

// ProjectUID yields the signed-in UID, or "" when signed out.
func ProjectUID(e domain.AuthEvent) string {
	if e.Session == nil {
		return ""
	}
	return e.Session.UID
}

// ProjectAuthenticated yields whether anyone is signed in.
func ProjectAuthenticated(e domain.AuthEvent) bool {
	return e.Session != nil
}

// ProjectAnonymous yields whether the session is anonymous; false when
// signed out.
func ProjectAnonymous(e domain.AuthEvent) bool {
	return e.Session != nil && e.Session.IsAnonymous
}

// ProjectProfile yields a copy of the session without bearer tokens, or
// nil when signed out.
func ProjectProfile(e domain.AuthEvent) *domain.Session {
	return e.Session.WithoutTokens()
}
