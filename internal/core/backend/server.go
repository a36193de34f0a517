package backend

import (
	"context"
	"errors"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
)

// ServerBackend runs operations as stateless REST calls.
//
// Privileged operations fetch a token with forceRefresh=true right before
// their request and never reuse it. SignOut is delegated to the SDK, which
// holds the only session state a server process has.
type ServerBackend struct {
	client *identitytoolkit.Client
	sdk    SDK
	tokens TokenSource
}

// NewServerBackend creates a REST backend. tokens is used when the call
// context carries no TokenSource; it may be nil.
func NewServerBackend(client *identitytoolkit.Client, sdk SDK, tokens TokenSource) *ServerBackend {
	return &ServerBackend{client: client, sdk: sdk, tokens: tokens}
}

var _ Capability = (*ServerBackend)(nil)

func (b *ServerBackend) Context() platform.Context { return platform.Server }

func (b *ServerBackend) freshToken(ctx context.Context) (string, error) {
	src := tokenSourceFrom(ctx, b.tokens)
	if src == nil {
		return "", domain.ErrNoSession
	}
	return src.Token(ctx, true)
}

func (b *ServerBackend) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := b.client.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return resp.Session(), nil
}

func (b *ServerBackend) SignInAnonymously(ctx context.Context) (*domain.Session, error) {
	resp, err := b.client.SignUpAnonymously(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Session(), nil
}

func (b *ServerBackend) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := b.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return resp.Session(), nil
}

func (b *ServerBackend) SignOut(ctx context.Context) error {
	if b.sdk == nil {
		return nil
	}
	return b.sdk.SignOut(ctx)
}

func (b *ServerBackend) setAccountInfo(ctx context.Context, req identitytoolkit.SetAccountInfoRequest) (*domain.Session, error) {
	token, err := b.freshToken(ctx)
	if err != nil {
		return nil, err
	}
	req.IDToken = token
	resp, err := b.client.SetAccountInfo(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Session(), nil
}

func (b *ServerBackend) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Session, error) {
	req := identitytoolkit.SetAccountInfoRequest{
		DisplayName: update.DisplayName,
		PhotoURL:    update.PhotoURL,
	}
	for _, attr := range update.Delete {
		req.DeleteAttribute = append(req.DeleteAttribute, string(attr))
	}
	return b.setAccountInfo(ctx, req)
}

func (b *ServerBackend) UpdateEmail(ctx context.Context, email string) (*domain.Session, error) {
	return b.setAccountInfo(ctx, identitytoolkit.SetAccountInfoRequest{Email: email})
}

func (b *ServerBackend) UpdatePassword(ctx context.Context, password string) (*domain.Session, error) {
	return b.setAccountInfo(ctx, identitytoolkit.SetAccountInfoRequest{Password: password})
}

func (b *ServerBackend) SendEmailVerification(ctx context.Context) error {
	token, err := b.freshToken(ctx)
	if err != nil {
		return err
	}
	return b.client.SendVerifyEmail(ctx, token)
}

func (b *ServerBackend) SendPasswordResetEmail(ctx context.Context, email string) error {
	return b.client.SendPasswordReset(ctx, email)
}

func (b *ServerBackend) VerifyPasswordResetCode(ctx context.Context, code string) (string, error) {
	return b.client.VerifyResetCode(ctx, code)
}

func (b *ServerBackend) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return b.client.ConfirmReset(ctx, code, newPassword)
}

// Reauthenticate has no stateless rendition.
func (b *ServerBackend) Reauthenticate(context.Context, domain.Credential) (*domain.Session, error) {
	return nil, domain.ErrUnsupportedInContext.WithDetails("relogin requires a client session")
}

// DeleteAccount authorizes with a fresh token; the credential is not sent.
func (b *ServerBackend) DeleteAccount(ctx context.Context, _ domain.Credential) error {
	token, err := b.freshToken(ctx)
	if err != nil {
		return err
	}
	return b.client.DeleteAccount(ctx, token)
}

func (b *ServerBackend) FetchProviders(ctx context.Context, email string) ([]string, error) {
	return b.client.ProvidersForEmail(ctx, email)
}

// Profile looks the account up with a fresh token. Having no token
// source or session means nobody is signed in.
func (b *ServerBackend) Profile(ctx context.Context) (*domain.Session, error) {
	token, err := b.freshToken(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user, err := b.client.GetAccountInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return user.Session(), nil
}
