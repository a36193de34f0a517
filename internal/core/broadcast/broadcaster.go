// Package broadcast fans one SDK session subscription out to any number
// of projected observer streams.
//
// Every event the SDK reports is delivered exactly once to every stream
// live at that moment, in SDK order. Late subscribers see only later
// events. Delivery never blocks the SDK: each stream buffers without
// bound until its consumer catches up or cancels.
package broadcast

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
	"github.com/yndnr/isoauth-go/internal/telemetry/metric"
	"github.com/yndnr/isoauth-go/pkg/async"
	"github.com/yndnr/isoauth-go/pkg/cmap"
)

// observer is a type-erased projected stream.
type observer interface {
	deliver(domain.AuthEvent)
	close()
}

type projected[T any] struct {
	stream  *async.Stream[T]
	project func(domain.AuthEvent) T
}

func (p projected[T]) deliver(e domain.AuthEvent) { p.stream.Emit(p.project(e)) }
func (p projected[T]) close()                     { p.stream.Close(nil) }

// Broadcaster holds the single SDK subscription.
type Broadcaster struct {
	sdk     backend.SDK
	metrics *metric.Registry
	log     logger.Logger

	startOnce   sync.Once
	mu          sync.Mutex // serializes publish against subscribe and Close
	unsubscribe func()
	closed      bool
	lastSeq     uint64

	observers *cmap.Map[string, observer]
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithMetrics records events and observer counts.
func WithMetrics(r *metric.Registry) Option {
	return func(b *Broadcaster) { b.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Broadcaster) { b.log = l }
}

// New creates a broadcaster over sdk. The SDK subscription is made on
// Start or on the first Observe, whichever comes first.
func New(sdk backend.SDK, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		sdk:       sdk,
		log:       logger.Default(),
		observers: cmap.New[string, observer](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start subscribes to the SDK. Calling it more than once has no effect.
func (b *Broadcaster) Start() {
	b.startOnce.Do(func() {
		unsub := b.sdk.OnSessionChanged(b.publish)
		b.mu.Lock()
		b.unsubscribe = unsub
		closed := b.closed
		b.mu.Unlock()
		if closed && unsub != nil {
			unsub()
		}
	})
}

func (b *Broadcaster) publish(e domain.AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if e.Seq != 0 && e.Seq <= b.lastSeq {
		b.log.Warn("auth event out of order", "seq", e.Seq, "last_seq", b.lastSeq)
	}
	b.lastSeq = e.Seq

	b.observers.Range(func(_ string, o observer) bool {
		o.deliver(e)
		return true
	})
	b.metrics.IncAuthEvents()
	b.log.Debug("auth event published", "seq", e.Seq, "authenticated", e.Authenticated(), "observers", b.observers.Count())
}

// Observers returns the number of live streams.
func (b *Broadcaster) Observers() int {
	return b.observers.Count()
}

// Close unsubscribes from the SDK and completes every stream.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	unsub := b.unsubscribe
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	for _, o := range b.observers.Values() {
		o.close()
	}
	removed := b.observers.DeleteFunc(func(string, observer) bool { return true })
	for i := 0; i < removed; i++ {
		b.metrics.ObserverRemoved()
	}
}

// Observe returns a stream carrying project(event) for every subsequent
// event. Canceling the stream unsubscribes it. After Close the returned
// stream is already complete.
func Observe[T any](b *Broadcaster, project func(domain.AuthEvent) T) *async.Stream[T] {
	s := async.NewStream[T]()
	id := ulid.Make().String()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.Close(nil)
		return s
	}
	b.observers.Set(id, projected[T]{stream: s, project: project})
	b.mu.Unlock()

	b.metrics.ObserverAdded()
	s.OnCancel(func() {
		if _, ok := b.observers.Pop(id); ok {
			b.metrics.ObserverRemoved()
		}
	})

	b.Start()
	return s
}
