package service

import (
	"context"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/broadcast"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
	"github.com/yndnr/isoauth-go/internal/telemetry/metric"
	"github.com/yndnr/isoauth-go/internal/telemetry/tracer"
	"github.com/yndnr/isoauth-go/pkg/async"
)

// Dispatcher is the single entry point for identity operations.
//
// Every call resolves the execution context afresh and runs against the
// matching Capability in its own goroutine. Nothing is cached between
// calls.
type Dispatcher struct {
	oracle      platform.Oracle
	client      backend.Capability
	server      backend.Capability
	broadcaster *broadcast.Broadcaster

	metrics *metric.Registry
	log     logger.Logger
}

// Config wires a Dispatcher. Client and Broadcaster may be nil for
// processes that never run in client context; Server may be nil for the
// converse.
type Config struct {
	Oracle      platform.Oracle
	Client      backend.Capability
	Server      backend.Capability
	Broadcaster *broadcast.Broadcaster
	Metrics     *metric.Registry
	Logger      logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	return &Dispatcher{
		oracle:      cfg.Oracle,
		client:      cfg.Client,
		server:      cfg.Server,
		broadcaster: cfg.Broadcaster,
		metrics:     cfg.Metrics,
		log:         l,
	}
}

// resolve picks the capability for the current context.
func (d *Dispatcher) resolve(op string) (platform.Context, backend.Capability, error) {
	c, err := platform.Resolve(d.oracle)
	if err != nil {
		return c, nil, err
	}

	var capability backend.Capability
	switch c {
	case platform.Server:
		capability = d.server
	case platform.Client:
		capability = d.client
	}
	if capability == nil {
		return c, nil, domain.ErrUnsupportedInContext.WithDetails(op + " has no " + c.String() + " backend")
	}
	return c, capability, nil
}

func (d *Dispatcher) finish(ctx context.Context, op string, c platform.Context, start time.Time, err error) {
	d.metrics.RecordDispatch(op, c.String(), metric.OutcomeOf(err), time.Since(start))
	l := d.log.WithContext(ctx).With("op", op, "context", c.String())
	if err != nil {
		l.Warn("dispatch failed", "error", err, "code", domain.GetErrorCode(err))
		return
	}
	l.Debug("dispatch completed", "duration", time.Since(start))
}

// run resolves the context now and executes fn asynchronously.
func run[T any](d *Dispatcher, ctx context.Context, op string, fn func(context.Context, backend.Capability) (T, error)) *async.Future[T] {
	start := time.Now()
	c, capability, err := d.resolve(op)
	if err != nil {
		d.finish(ctx, op, c, start, err)
		return async.Failed[T](err)
	}

	return async.Go(ctx, func(ctx context.Context) (T, error) {
		ctx, span := tracer.StartSpan(ctx, "dispatch."+op)
		defer span.End()
		span.SetAttribute("isoauth.context", c.String())

		v, err := fn(ctx, capability)
		if err != nil {
			span.RecordError(err)
		}
		d.finish(ctx, op, c, start, err)
		return v, err
	})
}

func runVoid(d *Dispatcher, ctx context.Context, op string, fn func(context.Context, backend.Capability) error) *async.Future[struct{}] {
	return run(d, ctx, op, func(ctx context.Context, c backend.Capability) (struct{}, error) {
		return struct{}{}, fn(ctx, c)
	})
}

// SignIn authenticates with email and password.
func (d *Dispatcher) SignIn(ctx context.Context, email, password string) *async.Future[*domain.Session] {
	return run(d, ctx, "signin", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.SignIn(ctx, email, password)
	})
}

// SignInAnonymously creates and signs in a credential-less account.
func (d *Dispatcher) SignInAnonymously(ctx context.Context) *async.Future[*domain.Session] {
	return run(d, ctx, "signin_anonymously", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.SignInAnonymously(ctx)
	})
}

// SignUp creates an email/password account.
func (d *Dispatcher) SignUp(ctx context.Context, email, password string) *async.Future[*domain.Session] {
	return run(d, ctx, "signup", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.SignUp(ctx, email, password)
	})
}

// SignOut ends the current session.
func (d *Dispatcher) SignOut(ctx context.Context) *async.Future[struct{}] {
	return runVoid(d, ctx, "signout", func(ctx context.Context, c backend.Capability) error {
		return c.SignOut(ctx)
	})
}

// UpdateProfile changes or clears display name and photo URL.
func (d *Dispatcher) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) *async.Future[*domain.Session] {
	return run(d, ctx, "update_profile", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.UpdateProfile(ctx, update)
	})
}

// UpdateEmail changes the account email.
func (d *Dispatcher) UpdateEmail(ctx context.Context, email string) *async.Future[*domain.Session] {
	return run(d, ctx, "update_email", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.UpdateEmail(ctx, email)
	})
}

// UpdatePassword changes the account password.
func (d *Dispatcher) UpdatePassword(ctx context.Context, password string) *async.Future[*domain.Session] {
	return run(d, ctx, "update_password", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.UpdatePassword(ctx, password)
	})
}

// SendEmailVerification mails a verification link to the signed-in user.
func (d *Dispatcher) SendEmailVerification(ctx context.Context) *async.Future[struct{}] {
	return runVoid(d, ctx, "send_email_verification", func(ctx context.Context, c backend.Capability) error {
		return c.SendEmailVerification(ctx)
	})
}

// SendPasswordResetEmail mails a reset code to email.
func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, email string) *async.Future[struct{}] {
	return runVoid(d, ctx, "send_password_reset", func(ctx context.Context, c backend.Capability) error {
		return c.SendPasswordResetEmail(ctx, email)
	})
}

// VerifyPasswordResetCode resolves a reset code to its account email.
func (d *Dispatcher) VerifyPasswordResetCode(ctx context.Context, code string) *async.Future[string] {
	return run(d, ctx, "verify_password_reset_code", func(ctx context.Context, c backend.Capability) (string, error) {
		return c.VerifyPasswordResetCode(ctx, code)
	})
}

// ConfirmPasswordReset sets a new password using a reset code.
func (d *Dispatcher) ConfirmPasswordReset(ctx context.Context, code, newPassword string) *async.Future[struct{}] {
	return runVoid(d, ctx, "confirm_password_reset", func(ctx context.Context, c backend.Capability) error {
		return c.ConfirmPasswordReset(ctx, code, newPassword)
	})
}

// Relogin re-authenticates the signed-in user. Server context has no
// session to re-authenticate and fails with ErrUnsupportedInContext.
func (d *Dispatcher) Relogin(ctx context.Context, cred domain.Credential) *async.Future[*domain.Session] {
	return run(d, ctx, "relogin", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		return c.Reauthenticate(ctx, cred)
	})
}

// DeletePermanently deletes the signed-in account.
func (d *Dispatcher) DeletePermanently(ctx context.Context, cred domain.Credential) *async.Future[struct{}] {
	return runVoid(d, ctx, "delete_account", func(ctx context.Context, c backend.Capability) error {
		return c.DeleteAccount(ctx, cred)
	})
}

// FetchProvidersForEmail lists the providers linked to email.
func (d *Dispatcher) FetchProvidersForEmail(ctx context.Context, email string) *async.Future[[]string] {
	return run(d, ctx, "fetch_providers", func(ctx context.Context, c backend.Capability) ([]string, error) {
		return c.FetchProviders(ctx, email)
	})
}

// CurrentSession returns a snapshot of the signed-in session, or nil.
func (d *Dispatcher) CurrentSession(ctx context.Context) *async.Future[*domain.Session] {
	return run(d, ctx, "current_session", func(ctx context.Context, c backend.Capability) (*domain.Session, error) {
		s, err := c.Profile(ctx)
		return s.WithoutTokens(), err
	})
}
