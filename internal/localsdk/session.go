package localsdk

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
)

// Session is the SDK's signed-in session. A Session stops working once
// the SDK signs out or signs in as someone else.
type Session struct {
	sdk *SDK

	mu           sync.Mutex
	profile      *domain.Session
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

var _ backend.SessionHandle = (*Session)(nil)

func newSession(sdk *SDK, profile *domain.Session) *Session {
	return &Session{sdk: sdk, profile: profile.WithoutTokens()}
}

func (s *Session) setTokens(idToken, refreshToken string, expiresIn time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idToken != "" {
		s.idToken = idToken
		s.expiresAt = tokenExpiry(idToken, expiresIn, now)
	}
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
}

// Snapshot returns the profile without bearer tokens.
func (s *Session) Snapshot() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

func (s *Session) uid() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.UID
}

func (s *Session) live() error {
	if !s.sdk.isCurrent(s) {
		return domain.ErrNoSession.WithDetails("session was signed out")
	}
	return nil
}

// Token returns the cached ID token while it is more than refreshSkew
// from expiry, and exchanges the refresh token otherwise or when
// forceRefresh is set.
func (s *Session) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}

	now := s.sdk.now()
	s.mu.Lock()
	cached, refresh, expiresAt := s.idToken, s.refreshToken, s.expiresAt
	s.mu.Unlock()

	if !forceRefresh && cached != "" && now.Add(refreshSkew).Before(expiresAt) {
		return cached, nil
	}

	resp, err := s.sdk.client.RefreshToken(ctx, refresh)
	if err != nil {
		return "", err
	}
	s.setTokens(resp.IDToken, resp.RefreshToken, resp.Expiry(), now)
	s.sdk.refreshed(s)
	return resp.IDToken, nil
}

// apply merges an account-update response into the session. Fields
// absent from the response are kept unless listed in cleared.
func (s *Session) apply(resp *identitytoolkit.AuthResponse, cleared ...domain.ProfileAttribute) {
	next := resp.Session()
	s.mu.Lock()
	p := s.profile
	if next.Email != "" {
		p.Email = next.Email
	}
	if next.DisplayName != "" {
		p.DisplayName = next.DisplayName
	}
	if next.PhotoURL != "" {
		p.PhotoURL = next.PhotoURL
	}
	for _, attr := range cleared {
		switch attr {
		case domain.AttributeDisplayName:
			p.DisplayName = ""
		case domain.AttributePhotoURL:
			p.PhotoURL = ""
		}
	}
	p.EmailVerified = next.EmailVerified || p.EmailVerified
	if next.Providers != nil {
		p.Providers = next.Providers
	}
	p.IsAnonymous = len(p.Providers) == 0 && p.Email == ""
	s.mu.Unlock()

	s.setTokens(resp.IDToken, resp.RefreshToken, next.ExpiresIn, s.sdk.now())
	s.sdk.refreshed(s)
}

func (s *Session) update(ctx context.Context, req identitytoolkit.SetAccountInfoRequest, cleared ...domain.ProfileAttribute) error {
	token, err := s.Token(ctx, false)
	if err != nil {
		return err
	}
	req.IDToken = token
	resp, err := s.sdk.client.SetAccountInfo(ctx, req)
	if err != nil {
		return err
	}
	s.apply(resp, cleared...)
	return nil
}

// UpdateProfile applies every field of update in one request.
func (s *Session) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	req := identitytoolkit.SetAccountInfoRequest{
		DisplayName: update.DisplayName,
		PhotoURL:    update.PhotoURL,
	}
	for _, attr := range update.Delete {
		req.DeleteAttribute = append(req.DeleteAttribute, string(attr))
	}
	return s.update(ctx, req, update.Delete...)
}

// UpdateEmail implements backend.SessionHandle.
func (s *Session) UpdateEmail(ctx context.Context, email string) error {
	return s.update(ctx, identitytoolkit.SetAccountInfoRequest{Email: email})
}

// UpdatePassword implements backend.SessionHandle.
func (s *Session) UpdatePassword(ctx context.Context, password string) error {
	return s.update(ctx, identitytoolkit.SetAccountInfoRequest{Password: password})
}

// SendEmailVerification implements backend.SessionHandle.
func (s *Session) SendEmailVerification(ctx context.Context) error {
	token, err := s.Token(ctx, false)
	if err != nil {
		return err
	}
	return s.sdk.client.SendVerifyEmail(ctx, token)
}

// Reauthenticate proves the credential again and takes the freshly
// issued tokens. The credential must belong to the signed-in user.
func (s *Session) Reauthenticate(ctx context.Context, cred domain.Credential) error {
	if err := s.live(); err != nil {
		return err
	}

	var (
		resp *identitytoolkit.AuthResponse
		err  error
	)
	switch cred.Provider {
	case domain.ProviderPassword:
		resp, err = s.sdk.client.VerifyPassword(ctx, cred.Secret["email"], cred.Secret["password"])
	case "":
		return domain.ErrInvalidArgument.WithDetails("credential provider is required")
	default:
		resp, err = s.sdk.client.VerifyAssertion(ctx, identitytoolkit.VerifyAssertionRequest{
			PostBody: assertionBody(cred),
		})
	}
	if err != nil {
		return err
	}
	uid := resp.LocalID
	if uid == "" {
		uid = tokenUID(resp.IDToken)
	}
	if uid != s.uid() {
		return domain.ErrBackendRejected.WithDetails("USER_MISMATCH")
	}

	s.apply(resp)
	return nil
}

// assertionBody encodes a federated credential as verifyAssertion's
// postBody, e.g. "id_token=...&providerId=google.com".
func assertionBody(cred domain.Credential) string {
	v := url.Values{}
	for k, val := range cred.Secret {
		v.Set(k, val)
	}
	v.Set("providerId", cred.Provider)
	return v.Encode()
}

// Delete removes the account and signs out.
func (s *Session) Delete(ctx context.Context) error {
	token, err := s.Token(ctx, false)
	if err != nil {
		return err
	}
	if err := s.sdk.client.DeleteAccount(ctx, token); err != nil {
		return err
	}
	s.sdk.transition(nil, s)
	return nil
}
