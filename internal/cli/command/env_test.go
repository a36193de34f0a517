package command

import (
	"context"
	"testing"
	"time"

	"github.com/yndnr/isoauth-go/internal/cli/config"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

func TestEnv_ServerSignOutEndsSDKSession(t *testing.T) {
	idp := newFakeIdentity(t)
	cfg := config.Default()
	cfg.Identity.APIKey = "k1"
	cfg.Identity.Endpoint = idp.srv.URL + "/v3/relyingparty/"
	cfg.Identity.TokenEndpoint = idp.srv.URL + "/v1/token"

	env, err := NewEnv(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewEnv() error = %v", err)
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	env.Context.Set(platform.Client)
	if _, err := env.Dispatcher.SignIn(ctx, "a@b.c", "pw").Await(ctx); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if env.SDK.CurrentSession() == nil {
		t.Fatal("no SDK session after client sign-in")
	}

	env.Context.Set(platform.Server)
	if _, err := env.Dispatcher.SignOut(ctx).Await(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if env.SDK.CurrentSession() != nil {
		t.Error("server-context SignOut left the SDK session in place")
	}
}
