package async

import (
	"context"
	"sync"
)

// Stream is an ordered, cancellable sequence of values.
//
// Producers call Emit, which never blocks: values are queued and pumped
// to the consumer channel in emission order.
type Stream[T any] struct {
	mu       sync.Mutex
	queue    []T
	closed   bool
	err      error
	onCancel []func()
	hooksRan bool

	wake     chan struct{}
	out      chan T
	canceled chan struct{}
	stop     sync.Once
}

// NewStream creates an open stream and starts its delivery pump.
func NewStream[T any]() *Stream[T] {
	s := &Stream[T]{
		wake:     make(chan struct{}, 1),
		out:      make(chan T),
		canceled: make(chan struct{}),
	}
	go s.pump()
	return s
}

// Single returns a stream that delivers the Future's value once and
// completes, or completes with the Future's error.
func Single[T any](f *Future[T]) *Stream[T] {
	s := NewStream[T]()
	s.OnCancel(f.Cancel)
	go func() {
		select {
		case <-f.Done():
		case <-s.canceled:
			return
		}
		v, _, err := f.Peek()
		if err != nil {
			s.Close(err)
			return
		}
		s.Emit(v)
		s.Close(nil)
	}()
	return s
}

// Emit queues v for delivery. It reports false once the stream is
// closed or canceled.
func (s *Stream[T]) Emit(v T) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	s.signal()
	return true
}

// Close completes the stream after already queued values are delivered.
// err, if non-nil, is reported by Err. Closing twice is a no-op.
func (s *Stream[T]) Close(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	s.mu.Unlock()

	s.signal()
}

// Cancel stops delivery and runs the registered cancel hooks.
// Safe to call any number of times, including after completion.
func (s *Stream[T]) Cancel() {
	s.stop.Do(func() {
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			s.err = ErrCanceled
		}
		s.queue = nil
		hooks := s.onCancel
		s.onCancel = nil
		s.hooksRan = true
		s.mu.Unlock()

		close(s.canceled)
		for _, fn := range hooks {
			fn()
		}
	})
}

// OnCancel registers fn to run when the consumer cancels the stream.
// If the stream is already canceled, fn runs immediately.
func (s *Stream[T]) OnCancel(fn func()) {
	s.mu.Lock()
	if s.hooksRan {
		s.mu.Unlock()
		fn()
		return
	}
	s.onCancel = append(s.onCancel, fn)
	s.mu.Unlock()
}

// C returns the delivery channel. It is closed when the stream completes
// or is canceled.
func (s *Stream[T]) C() <-chan T {
	return s.out
}

// Err returns the terminal error once C is closed.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next waits for the next value. ok is false when the stream has ended.
func (s *Stream[T]) Next(ctx context.Context) (v T, ok bool, err error) {
	select {
	case v, ok = <-s.out:
		if !ok {
			return v, false, s.Err()
		}
		return v, true, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

// Collect reads n values or until the stream ends.
func (s *Stream[T]) Collect(ctx context.Context, n int) ([]T, error) {
	vals := make([]T, 0, n)
	for len(vals) < n {
		v, ok, err := s.Next(ctx)
		if err != nil {
			return vals, err
		}
		if !ok {
			break
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (s *Stream[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Stream[T]) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-s.wake:
				continue
			case <-s.canceled:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.canceled:
			return
		}
	}
}
