package async

import (
	"context"
	"errors"
	"sync"
)

// ErrCanceled is the result of a Future or Stream canceled by its consumer.
var ErrCanceled = errors.New("async: canceled")

// Future is the single-value result of an asynchronous operation.
type Future[T any] struct {
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc

	val T
	err error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{}), cancel: func() {}}
}

// Go runs fn in its own goroutine and returns its eventual result.
//
// The context handed to fn is canceled when the Future is canceled.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	go func() {
		defer cancel()
		v, err := fn(runCtx)
		f.settle(v, err)
	}()
	return f
}

// Resolved returns a completed Future holding v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Failed returns a completed Future holding err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// settle stores the first result; later calls are ignored.
func (f *Future[T]) settle(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.val = v
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the Future holds a result.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future completes or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the outcome without blocking; ok is false while pending.
func (f *Future[T]) Peek() (v T, ok bool, err error) {
	select {
	case <-f.done:
		return f.val, true, f.err
	default:
		return v, false, nil
	}
}

// Cancel abandons the operation. The Future completes with ErrCanceled
// unless it already holds a result, in which case Cancel is a no-op.
func (f *Future[T]) Cancel() {
	var zero T
	f.settle(zero, ErrCanceled)
	f.cancel()
}

// Then maps a Future's value once it completes.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	out.cancel = f.Cancel

	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			out.settle(zero, f.err)
			return
		}
		out.settle(fn(f.val))
	}()
	return out
}
