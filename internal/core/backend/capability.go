package backend

import (
	"context"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
)

// Capability is the set of identity operations available in one
// execution context. Operations with no meaning in a context fail with
// domain.ErrUnsupportedInContext.
type Capability interface {
	Context() platform.Context

	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignInAnonymously(ctx context.Context) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error

	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Session, error)
	UpdateEmail(ctx context.Context, email string) (*domain.Session, error)
	UpdatePassword(ctx context.Context, password string) (*domain.Session, error)
	SendEmailVerification(ctx context.Context) error

	SendPasswordResetEmail(ctx context.Context, email string) error
	VerifyPasswordResetCode(ctx context.Context, code string) (string, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error

	Reauthenticate(ctx context.Context, cred domain.Credential) (*domain.Session, error)
	DeleteAccount(ctx context.Context, cred domain.Credential) error
	FetchProviders(ctx context.Context, email string) ([]string, error)

	// Profile returns the signed-in session, or nil when nobody is.
	Profile(ctx context.Context) (*domain.Session, error)
}

// TokenSource yields ID tokens for privileged calls.
type TokenSource interface {
	// Token returns an ID token. forceRefresh discards any cached token.
	Token(ctx context.Context, forceRefresh bool) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context, forceRefresh bool) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context, forceRefresh bool) (string, error) {
	return f(ctx, forceRefresh)
}

// SDK is the stateful identity client used in client context.
type SDK interface {
	// OnSessionChanged registers handler for every session transition and
	// returns a function that removes it. Handlers run on the SDK's
	// goroutine and must not block.
	OnSessionChanged(handler func(domain.AuthEvent)) (unsubscribe func())

	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*domain.Session, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignInAnonymously(ctx context.Context) (*domain.Session, error)
	SignOut(ctx context.Context) error

	// CurrentSession returns the signed-in session, or nil.
	CurrentSession() SessionHandle

	SendPasswordResetEmail(ctx context.Context, email string) error
	VerifyPasswordResetCode(ctx context.Context, code string) (string, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	FetchProvidersForEmail(ctx context.Context, email string) ([]string, error)
}

// SessionHandle operates on the SDK's signed-in session.
type SessionHandle interface {
	Snapshot() *domain.Session
	Token(ctx context.Context, forceRefresh bool) (string, error)

	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error
	UpdateEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, password string) error
	SendEmailVerification(ctx context.Context) error
	Reauthenticate(ctx context.Context, cred domain.Credential) error
	Delete(ctx context.Context) error
}

// SDKTokenSource draws tokens from the SDK's current session.
type SDKTokenSource struct {
	SDK SDK
}

// Token implements TokenSource.
func (s SDKTokenSource) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if s.SDK == nil {
		return "", domain.ErrNoSession
	}
	h := s.SDK.CurrentSession()
	if h == nil {
		return "", domain.ErrNoSession
	}
	return h.Token(ctx, forceRefresh)
}

type tokenSourceKey struct{}

// ContextWithTokenSource overrides the server backend's token source for
// calls made with ctx. The gateway uses it to bind each request to the
// caller's refresh token.
func ContextWithTokenSource(ctx context.Context, src TokenSource) context.Context {
	return context.WithValue(ctx, tokenSourceKey{}, src)
}

func tokenSourceFrom(ctx context.Context, fallback TokenSource) TokenSource {
	if src, ok := ctx.Value(tokenSourceKey{}).(TokenSource); ok && src != nil {
		return src
	}
	return fallback
}
