package domain

import (
	"strings"
	"time"
)

// Session is one authenticated identity at a point in time.
//
// Sessions are projections: they are re-derived from the active backend
// on every read and never mutated by the dispatcher.
type Session struct {
	UID           string         `json:"uid" yaml:"uid"`
	DisplayName   string         `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Email         string         `json:"email,omitempty" yaml:"email,omitempty"`
	EmailVerified bool           `json:"email_verified" yaml:"email_verified"`
	PhotoURL      string         `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	IsAnonymous   bool           `json:"is_anonymous" yaml:"is_anonymous"`
	PhoneNumber   string         `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	Providers     []ProviderInfo `json:"providers,omitempty" yaml:"providers,omitempty"`

	// IDToken, RefreshToken and ExpiresIn are only populated on results
	// that carry a freshly issued token (sign-in, sign-up, account updates).
	IDToken      string        `json:"id_token,omitempty" yaml:"-"`
	RefreshToken string        `json:"refresh_token,omitempty" yaml:"-"`
	ExpiresIn    time.Duration `json:"expires_in,omitempty" yaml:"-"`
}

// ProviderInfo describes one identity provider linked to a session.
type ProviderInfo struct {
	ProviderID  string `json:"provider_id" yaml:"provider_id"`
	UID         string `json:"uid,omitempty" yaml:"uid,omitempty"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
}

// Clone returns a deep copy of the session. Nil-safe.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Providers != nil {
		c.Providers = make([]ProviderInfo, len(s.Providers))
		copy(c.Providers, s.Providers)
	}
	return &c
}

// WithoutTokens returns a copy with the bearer material stripped.
func (s *Session) WithoutTokens() *Session {
	c := s.Clone()
	if c == nil {
		return nil
	}
	c.IDToken = ""
	c.RefreshToken = ""
	c.ExpiresIn = 0
	return c
}

// ProviderIDs lists the linked provider identifiers in order.
func (s *Session) ProviderIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Providers))
	for _, p := range s.Providers {
		ids = append(ids, p.ProviderID)
	}
	return ids
}

// AuthEvent notifies that the session state changed.
//
// Session is nil after sign-out. Seq increases monotonically per source.
type AuthEvent struct {
	Session *Session
	Seq     uint64
	At      time.Time
}

// Authenticated reports whether the event carries a signed-in session.
func (e AuthEvent) Authenticated() bool {
	return e.Session != nil
}

// Credential is an opaque provider bundle used for re-authentication.
//
// The dispatcher never inspects Secret; backends forward it as-is.
type Credential struct {
	Provider string            `json:"provider"`
	Secret   map[string]string `json:"secret,omitempty"`
}

// Well-known credential providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
	ProviderGitHub   = "github.com"
)

// PasswordCredential builds an email/password credential.
func PasswordCredential(email, password string) Credential {
	return Credential{
		Provider: ProviderPassword,
		Secret: map[string]string{
			"email":    email,
			"password": password,
		},
	}
}

// ProfileAttribute names a profile field that can be cleared.
type ProfileAttribute string

const (
	AttributeDisplayName ProfileAttribute = "DISPLAY_NAME"
	AttributePhotoURL    ProfileAttribute = "PHOTO_URL"
)

// ParseProfileAttribute accepts the wire name in any case.
func ParseProfileAttribute(s string) (ProfileAttribute, error) {
	switch ProfileAttribute(strings.ToUpper(strings.TrimSpace(s))) {
	case AttributeDisplayName:
		return AttributeDisplayName, nil
	case AttributePhotoURL:
		return AttributePhotoURL, nil
	default:
		return "", ErrInvalidArgument.WithDetails("unknown profile attribute " + s)
	}
}

// ProfileUpdate describes a profile mutation.
type ProfileUpdate struct {
	DisplayName string             `json:"display_name,omitempty"`
	PhotoURL    string             `json:"photo_url,omitempty"`
	Delete      []ProfileAttribute `json:"delete_attribute,omitempty"`
}

// Clears reports whether attr is scheduled for deletion.
func (u ProfileUpdate) Clears(attr ProfileAttribute) bool {
	for _, a := range u.Delete {
		if a == attr {
			return true
		}
	}
	return false
}
