package service

import (
	"context"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/broadcast"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/pkg/async"
)

// ObserveUID streams the signed-in UID ("" when signed out).
func (d *Dispatcher) ObserveUID(ctx context.Context) *async.Stream[string] {
	return observe(d, ctx, "observe_uid", broadcast.ProjectUID)
}

// ObserveIsAuthenticated streams whether anyone is signed in.
func (d *Dispatcher) ObserveIsAuthenticated(ctx context.Context) *async.Stream[bool] {
	return observe(d, ctx, "observe_authenticated", broadcast.ProjectAuthenticated)
}

// ObserveIsAnonymous streams whether the session is anonymous.
func (d *Dispatcher) ObserveIsAnonymous(ctx context.Context) *async.Stream[bool] {
	return observe(d, ctx, "observe_anonymous", broadcast.ProjectAnonymous)
}

// ObserveCurrentProfile streams the session profile (nil when signed out).
func (d *Dispatcher) ObserveCurrentProfile(ctx context.Context) *async.Stream[*domain.Session] {
	return observe(d, ctx, "observe_profile", broadcast.ProjectProfile)
}

// observe subscribes to the broadcaster in client context; the
// subscription ends when ctx is done or the stream is canceled. In server
// context there is no event source, so the stream carries one value
// derived from a fresh profile lookup and then completes.
func observe[T any](d *Dispatcher, ctx context.Context, op string, project func(domain.AuthEvent) T) *async.Stream[T] {
	c, err := platform.Resolve(d.oracle)
	if err != nil {
		d.finish(ctx, op, c, time.Now(), err)
		return failedStream[T](err)
	}

	if c == platform.Client {
		if d.broadcaster == nil {
			err := domain.ErrUnsupportedInContext.WithDetails(op + " has no client event source")
			d.finish(ctx, op, c, time.Now(), err)
			return failedStream[T](err)
		}
		d.finish(ctx, op, c, time.Now(), nil)
		s := broadcast.Observe(d.broadcaster, project)
		stop := context.AfterFunc(ctx, s.Cancel)
		s.OnCancel(func() { stop() })
		return s
	}

	f := run(d, ctx, op, func(ctx context.Context, capability backend.Capability) (T, error) {
		s, err := capability.Profile(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		return project(domain.AuthEvent{Session: s, At: time.Now()}), nil
	})
	return async.Single(f)
}

func failedStream[T any](err error) *async.Stream[T] {
	s := async.NewStream[T]()
	s.Close(err)
	return s
}
