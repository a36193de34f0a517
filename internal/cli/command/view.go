package command

import (
	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// sessionView is a session as printed by the CLI. Only sign-in results
// carry the refresh token, which the caller passes back through
// --refresh-token.
type sessionView struct {
	UID           string   `json:"uid" yaml:"uid"`
	Email         string   `json:"email,omitempty" yaml:"email,omitempty"`
	DisplayName   string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	PhotoURL      string   `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	EmailVerified bool     `json:"email_verified" yaml:"email_verified"`
	Anonymous     bool     `json:"anonymous" yaml:"anonymous"`
	Providers     []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	RefreshToken  string   `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresIn     string   `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
}

func newSessionView(s *domain.Session, withTokens bool) *sessionView {
	if s == nil {
		return nil
	}
	v := &sessionView{
		UID:           s.UID,
		Email:         s.Email,
		DisplayName:   s.DisplayName,
		PhotoURL:      s.PhotoURL,
		EmailVerified: s.EmailVerified,
		Anonymous:     s.IsAnonymous,
		Providers:     s.ProviderIDs(),
	}
	if withTokens {
		v.RefreshToken = s.RefreshToken
		if s.ExpiresIn > 0 {
			v.ExpiresIn = s.ExpiresIn.String()
		}
	}
	return v
}

type emailView struct {
	Email string `json:"email" yaml:"email"`
}

type providersView struct {
	Email     string   `json:"email" yaml:"email"`
	Providers []string `json:"providers" yaml:"providers"`
}
