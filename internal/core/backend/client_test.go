package backend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
)

func newSignedInSDK() (*fakeSDK, *callLog) {
	log := &callLog{}
	return &fakeSDK{
		log:    log,
		handle: &fakeHandle{log: log, session: &domain.Session{UID: "u1", Email: "a@b.c"}},
	}, log
}

func TestClientBackend_Context(t *testing.T) {
	if NewClientBackend(&fakeSDK{}).Context() != platform.Client {
		t.Error("ClientBackend should report client context")
	}
}

func TestClientBackend_UpdateProfileSingleCall(t *testing.T) {
	sdk, log := newSignedInSDK()
	b := NewClientBackend(sdk)

	update := domain.ProfileUpdate{DisplayName: "A", PhotoURL: "B"}
	s, err := b.UpdateProfile(context.Background(), update)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if s == nil || s.DisplayName != "A" || s.PhotoURL != "B" {
		t.Errorf("UpdateProfile() = %+v, want refreshed snapshot", s)
	}
	if got := log.all(); !reflect.DeepEqual(got, []string{"handle.updateProfile"}) {
		t.Errorf("calls = %v, want one SDK update", got)
	}
	if !reflect.DeepEqual(sdk.handle.updates, []domain.ProfileUpdate{update}) {
		t.Errorf("SDK saw %v", sdk.handle.updates)
	}
}

func TestClientBackend_PrivilegedWithoutSession(t *testing.T) {
	b := NewClientBackend(&fakeSDK{log: &callLog{}})
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["UpdateProfile"] = b.UpdateProfile(ctx, domain.ProfileUpdate{})
	_, checks["UpdateEmail"] = b.UpdateEmail(ctx, "x@y.z")
	_, checks["UpdatePassword"] = b.UpdatePassword(ctx, "pw")
	checks["SendEmailVerification"] = b.SendEmailVerification(ctx)
	_, checks["Reauthenticate"] = b.Reauthenticate(ctx, domain.Credential{})
	checks["DeleteAccount"] = b.DeleteAccount(ctx, domain.Credential{})

	for name, err := range checks {
		if !errors.Is(err, domain.ErrNoSession) {
			t.Errorf("%s error = %v, want ErrNoSession", name, err)
		}
	}
}

func TestClientBackend_Delegation(t *testing.T) {
	tests := []struct {
		name string
		call func(*ClientBackend) error
		want string
	}{
		{"SignIn", func(b *ClientBackend) error { _, err := b.SignIn(context.Background(), "a@b.c", "pw"); return err }, "sdk.signIn"},
		{"SignUp", func(b *ClientBackend) error { _, err := b.SignUp(context.Background(), "a@b.c", "pw"); return err }, "sdk.signUp"},
		{"SignInAnonymously", func(b *ClientBackend) error { _, err := b.SignInAnonymously(context.Background()); return err }, "sdk.signInAnonymously"},
		{"SignOut", func(b *ClientBackend) error { return b.SignOut(context.Background()) }, "sdk.signOut"},
		{"UpdateEmail", func(b *ClientBackend) error { _, err := b.UpdateEmail(context.Background(), "n@b.c"); return err }, "handle.updateEmail"},
		{"UpdatePassword", func(b *ClientBackend) error { _, err := b.UpdatePassword(context.Background(), "pw"); return err }, "handle.updatePassword"},
		{"SendEmailVerification", func(b *ClientBackend) error { return b.SendEmailVerification(context.Background()) }, "handle.sendEmailVerification"},
		{"SendPasswordResetEmail", func(b *ClientBackend) error { return b.SendPasswordResetEmail(context.Background(), "a@b.c") }, "sdk.sendPasswordResetEmail"},
		{"VerifyPasswordResetCode", func(b *ClientBackend) error { _, err := b.VerifyPasswordResetCode(context.Background(), "c"); return err }, "sdk.verifyPasswordResetCode"},
		{"ConfirmPasswordReset", func(b *ClientBackend) error { return b.ConfirmPasswordReset(context.Background(), "c", "pw") }, "sdk.confirmPasswordReset"},
		{"Reauthenticate", func(b *ClientBackend) error {
			_, err := b.Reauthenticate(context.Background(), domain.PasswordCredential("a@b.c", "pw"))
			return err
		}, "handle.reauthenticate"},
		{"DeleteAccount", func(b *ClientBackend) error { return b.DeleteAccount(context.Background(), domain.Credential{}) }, "handle.delete"},
		{"FetchProviders", func(b *ClientBackend) error { _, err := b.FetchProviders(context.Background(), "a@b.c"); return err }, "sdk.fetchProviders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sdk, log := newSignedInSDK()
			if err := tt.call(NewClientBackend(sdk)); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := log.all(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestClientBackend_ProfileSignedOut(t *testing.T) {
	s, err := NewClientBackend(&fakeSDK{}).Profile(context.Background())
	if err != nil || s != nil {
		t.Errorf("Profile() = %v, %v; want nil, nil", s, err)
	}
}

func TestClientBackend_ProfileReturnsCopy(t *testing.T) {
	sdk, _ := newSignedInSDK()
	s, _ := NewClientBackend(sdk).Profile(context.Background())
	s.Email = "changed"
	if sdk.handle.session.Email != "a@b.c" {
		t.Error("Profile() leaked the SDK's session")
	}
}

func TestSDKTokenSource(t *testing.T) {
	if _, err := (SDKTokenSource{}).Token(context.Background(), true); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("nil SDK error = %v", err)
	}
	if _, err := (SDKTokenSource{SDK: &fakeSDK{}}).Token(context.Background(), true); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("signed-out error = %v", err)
	}
	sdk, _ := newSignedInSDK()
	tok, err := SDKTokenSource{SDK: sdk}.Token(context.Background(), true)
	if err != nil || tok != "sdk-token" {
		t.Errorf("Token() = %q, %v", tok, err)
	}
}
