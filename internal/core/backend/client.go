package backend

import (
	"context"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
)

// ClientBackend runs operations through the stateful SDK.
type ClientBackend struct {
	sdk SDK
}

// NewClientBackend wraps sdk.
func NewClientBackend(sdk SDK) *ClientBackend {
	return &ClientBackend{sdk: sdk}
}

var _ Capability = (*ClientBackend)(nil)

func (b *ClientBackend) Context() platform.Context { return platform.Client }

func (b *ClientBackend) session() (SessionHandle, error) {
	h := b.sdk.CurrentSession()
	if h == nil {
		return nil, domain.ErrNoSession
	}
	return h, nil
}

func (b *ClientBackend) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return b.sdk.SignInWithEmailAndPassword(ctx, email, password)
}

func (b *ClientBackend) SignInAnonymously(ctx context.Context) (*domain.Session, error) {
	return b.sdk.SignInAnonymously(ctx)
}

func (b *ClientBackend) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return b.sdk.CreateUserWithEmailAndPassword(ctx, email, password)
}

func (b *ClientBackend) SignOut(ctx context.Context) error {
	return b.sdk.SignOut(ctx)
}

// UpdateProfile forwards the whole update in one SDK call and returns the
// refreshed snapshot.
func (b *ClientBackend) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Session, error) {
	h, err := b.session()
	if err != nil {
		return nil, err
	}
	if err := h.UpdateProfile(ctx, update); err != nil {
		return nil, err
	}
	return h.Snapshot(), nil
}

func (b *ClientBackend) UpdateEmail(ctx context.Context, email string) (*domain.Session, error) {
	h, err := b.session()
	if err != nil {
		return nil, err
	}
	if err := h.UpdateEmail(ctx, email); err != nil {
		return nil, err
	}
	return h.Snapshot(), nil
}

func (b *ClientBackend) UpdatePassword(ctx context.Context, password string) (*domain.Session, error) {
	h, err := b.session()
	if err != nil {
		return nil, err
	}
	if err := h.UpdatePassword(ctx, password); err != nil {
		return nil, err
	}
	return h.Snapshot(), nil
}

func (b *ClientBackend) SendEmailVerification(ctx context.Context) error {
	h, err := b.session()
	if err != nil {
		return err
	}
	return h.SendEmailVerification(ctx)
}

func (b *ClientBackend) SendPasswordResetEmail(ctx context.Context, email string) error {
	return b.sdk.SendPasswordResetEmail(ctx, email)
}

func (b *ClientBackend) VerifyPasswordResetCode(ctx context.Context, code string) (string, error) {
	return b.sdk.VerifyPasswordResetCode(ctx, code)
}

func (b *ClientBackend) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return b.sdk.ConfirmPasswordReset(ctx, code, newPassword)
}

func (b *ClientBackend) Reauthenticate(ctx context.Context, cred domain.Credential) (*domain.Session, error) {
	h, err := b.session()
	if err != nil {
		return nil, err
	}
	if err := h.Reauthenticate(ctx, cred); err != nil {
		return nil, err
	}
	return h.Snapshot(), nil
}

// DeleteAccount deletes the signed-in account. The SDK session is already
// authenticated, so the credential is not consulted.
func (b *ClientBackend) DeleteAccount(ctx context.Context, _ domain.Credential) error {
	h, err := b.session()
	if err != nil {
		return err
	}
	return h.Delete(ctx)
}

func (b *ClientBackend) FetchProviders(ctx context.Context, email string) ([]string, error) {
	return b.sdk.FetchProvidersForEmail(ctx, email)
}

func (b *ClientBackend) Profile(context.Context) (*domain.Session, error) {
	h := b.sdk.CurrentSession()
	if h == nil {
		return nil, nil
	}
	return h.Snapshot(), nil
}
