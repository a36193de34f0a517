package identitytoolkit

import (
	"strconv"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// Request bodies. Field names follow the v3 wire format.

type passwordRequest struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// SetAccountInfoRequest updates the account owning IDToken.
type SetAccountInfoRequest struct {
	IDToken           string   `json:"idToken"`
	DisplayName       string   `json:"displayName,omitempty"`
	PhotoURL          string   `json:"photoUrl,omitempty"`
	Email             string   `json:"email,omitempty"`
	Password          string   `json:"password,omitempty"`
	DeleteAttribute   []string `json:"deleteAttribute,omitempty"`
	ReturnSecureToken bool     `json:"returnSecureToken"`
}

// OOB request types.
const (
	OobVerifyEmail   = "VERIFY_EMAIL"
	OobPasswordReset = "PASSWORD_RESET"
)

type oobRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken,omitempty"`
	Email       string `json:"email,omitempty"`
}

type resetPasswordRequest struct {
	OobCode     string `json:"oobCode"`
	NewPassword string `json:"newPassword,omitempty"`
}

type idTokenRequest struct {
	IDToken string `json:"idToken"`
}

type createAuthURIRequest struct {
	Identifier  string `json:"identifier"`
	ContinueURI string `json:"continueUri"`
}

// VerifyAssertionRequest signs in with a federated provider credential.
type VerifyAssertionRequest struct {
	RequestURI          string `json:"requestUri"`
	PostBody            string `json:"postBody"`
	IDToken             string `json:"idToken,omitempty"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential,omitempty"`
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// ProviderUserInfo is one linked provider on the wire.
type ProviderUserInfo struct {
	ProviderID  string `json:"providerId"`
	FederatedID string `json:"federatedId,omitempty"`
	RawID       string `json:"rawId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthResponse is returned by verifyPassword, signupNewUser,
// setAccountInfo and verifyAssertion.
type AuthResponse struct {
	LocalID          string             `json:"localId"`
	Email            string             `json:"email"`
	EmailVerified    bool               `json:"emailVerified"`
	DisplayName      string             `json:"displayName"`
	PhotoURL         string             `json:"photoUrl"`
	IDToken          string             `json:"idToken"`
	RefreshToken     string             `json:"refreshToken"`
	ExpiresIn        string             `json:"expiresIn"`
	Registered       bool               `json:"registered"`
	ProviderUserInfo []ProviderUserInfo `json:"providerUserInfo"`
}

// Session projects the response onto a domain session.
func (r *AuthResponse) Session() *domain.Session {
	s := &domain.Session{
		UID:           r.LocalID,
		Email:         r.Email,
		EmailVerified: r.EmailVerified,
		DisplayName:   r.DisplayName,
		PhotoURL:      r.PhotoURL,
		Providers:     providers(r.ProviderUserInfo, r.LocalID),
		IDToken:       r.IDToken,
		RefreshToken:  r.RefreshToken,
		ExpiresIn:     parseExpiresIn(r.ExpiresIn),
	}
	s.IsAnonymous = isAnonymous(s)
	return s
}

// User is one getAccountInfo entry.
type User struct {
	LocalID          string             `json:"localId"`
	Email            string             `json:"email"`
	EmailVerified    bool               `json:"emailVerified"`
	DisplayName      string             `json:"displayName"`
	PhotoURL         string             `json:"photoUrl"`
	PhoneNumber      string             `json:"phoneNumber"`
	Disabled         bool               `json:"disabled"`
	ProviderUserInfo []ProviderUserInfo `json:"providerUserInfo"`
}

// Session projects the account onto a domain session without tokens.
func (u *User) Session() *domain.Session {
	s := &domain.Session{
		UID:           u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		PhoneNumber:   u.PhoneNumber,
		Providers:     providers(u.ProviderUserInfo, u.LocalID),
	}
	s.IsAnonymous = isAnonymous(s)
	return s
}

type accountInfoResponse struct {
	Users []User `json:"users"`
}

type oobResponse struct {
	Email string `json:"email"`
}

type resetPasswordResponse struct {
	Email       string `json:"email"`
	RequestType string `json:"requestType"`
}

type createAuthURIResponse struct {
	AllProviders  []string `json:"allProviders"`
	SigninMethods []string `json:"signinMethods"`
	Registered    bool     `json:"registered"`
}

// TokenResponse is the secure-token refresh grant result.
type TokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// Expiry returns ExpiresIn as a duration.
func (t *TokenResponse) Expiry() time.Duration {
	return parseExpiresIn(t.ExpiresIn)
}

func providers(in []ProviderUserInfo, uid string) []domain.ProviderInfo {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.ProviderInfo, 0, len(in))
	for _, p := range in {
		id := p.RawID
		if id == "" {
			id = p.FederatedID
		}
		if id == "" {
			id = uid
		}
		out = append(out, domain.ProviderInfo{
			ProviderID:  p.ProviderID,
			UID:         id,
			DisplayName: p.DisplayName,
			Email:       p.Email,
			PhotoURL:    p.PhotoURL,
			PhoneNumber: p.PhoneNumber,
		})
	}
	return out
}

// An account with no linked provider and no email was created by
// anonymous sign-up.
func isAnonymous(s *domain.Session) bool {
	return len(s.Providers) == 0 && s.Email == ""
}

func parseExpiresIn(v string) time.Duration {
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
