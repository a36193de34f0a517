package identitytoolkit

import (
	"context"
	"encoding/json"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/telemetry/metric"
	"github.com/yndnr/isoauth-go/internal/telemetry/tracer"
)

// Client issues typed Identity Toolkit calls over a Transport.
type Client struct {
	cfg       Config
	transport Transport
	metrics   *metric.Registry
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every call in r.
func WithMetrics(r *metric.Registry) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient creates a client. Empty endpoints in cfg take the defaults.
func NewClient(cfg Config, t Transport, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = def.TokenEndpoint
	}
	if cfg.ContinueURI == "" {
		cfg.ContinueURI = def.ContinueURI
	}
	c := &Client{cfg: cfg, transport: t}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) call(ctx context.Context, ep Endpoint, body, out any) error {
	if c.cfg.APIKey == "" {
		return domain.ErrMissingAPIKey
	}

	ctx, span := tracer.StartSpan(ctx, "identitytoolkit."+string(ep))
	defer span.End()

	env := RequestEnvelope{Endpoint: ep, APIKey: c.cfg.APIKey, Body: body}
	base := c.cfg.Endpoint
	if ep == endpointSecureTokenGrant {
		base = c.cfg.TokenEndpoint
	}

	raw, err := c.transport.Post(ctx, env.URL(base), env.Body)
	if err == nil && out != nil {
		if uerr := json.Unmarshal(raw, out); uerr != nil {
			err = domain.ErrTransport.WithDetails("decode " + string(ep) + " response").WithCause(uerr)
		}
	}

	c.metrics.RecordBackendCall(string(ep), metric.OutcomeOf(err))
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// VerifyPassword signs in with email and password.
func (c *Client) VerifyPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, EndpointVerifyPassword, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp creates an email/password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, EndpointSignupNewUser, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUpAnonymously creates an account with no credentials.
func (c *Client) SignUpAnonymously(ctx context.Context) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, EndpointSignupNewUser, passwordRequest{ReturnSecureToken: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAccountInfo applies an account update.
func (c *Client) SetAccountInfo(ctx context.Context, req SetAccountInfoRequest) (*AuthResponse, error) {
	req.ReturnSecureToken = true
	var out AuthResponse
	if err := c.call(ctx, EndpointSetAccountInfo, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendVerifyEmail mails a verification link to the account owning idToken.
func (c *Client) SendVerifyEmail(ctx context.Context, idToken string) error {
	return c.call(ctx, EndpointGetOobCode, oobRequest{RequestType: OobVerifyEmail, IDToken: idToken}, &oobResponse{})
}

// SendPasswordReset mails a password reset code to email.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, EndpointGetOobCode, oobRequest{RequestType: OobPasswordReset, Email: email}, &oobResponse{})
}

// VerifyResetCode checks a reset code and returns the account email.
func (c *Client) VerifyResetCode(ctx context.Context, oobCode string) (string, error) {
	var out resetPasswordResponse
	if err := c.call(ctx, EndpointResetPassword, resetPasswordRequest{OobCode: oobCode}, &out); err != nil {
		return "", err
	}
	return out.Email, nil
}

// ConfirmReset sets a new password using a reset code.
func (c *Client) ConfirmReset(ctx context.Context, oobCode, newPassword string) error {
	return c.call(ctx, EndpointResetPassword, resetPasswordRequest{OobCode: oobCode, NewPassword: newPassword}, &resetPasswordResponse{})
}

// DeleteAccount deletes the account owning idToken.
func (c *Client) DeleteAccount(ctx context.Context, idToken string) error {
	return c.call(ctx, EndpointDeleteAccount, idTokenRequest{IDToken: idToken}, nil)
}

// GetAccountInfo returns the account owning idToken.
func (c *Client) GetAccountInfo(ctx context.Context, idToken string) (*User, error) {
	var out accountInfoResponse
	if err := c.call(ctx, EndpointGetAccountInfo, idTokenRequest{IDToken: idToken}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, domain.ErrBackendRejected.WithDetails("USER_NOT_FOUND")
	}
	return &out.Users[0], nil
}

// ProvidersForEmail lists the sign-in providers linked to email.
func (c *Client) ProvidersForEmail(ctx context.Context, email string) ([]string, error) {
	var out createAuthURIResponse
	err := c.call(ctx, EndpointCreateAuthURI, createAuthURIRequest{
		Identifier:  email,
		ContinueURI: c.cfg.ContinueURI,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AllProviders == nil {
		return []string{}, nil
	}
	return out.AllProviders, nil
}

// VerifyAssertion signs in, or re-authenticates, with a federated
// credential.
func (c *Client) VerifyAssertion(ctx context.Context, req VerifyAssertionRequest) (*AuthResponse, error) {
	req.ReturnSecureToken = true
	if req.RequestURI == "" {
		req.RequestURI = c.cfg.ContinueURI
	}
	var out AuthResponse
	if err := c.call(ctx, EndpointVerifyAssertion, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new ID token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrNoSession.WithDetails("no refresh token")
	}
	var out TokenResponse
	err := c.call(ctx, endpointSecureTokenGrant, refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
