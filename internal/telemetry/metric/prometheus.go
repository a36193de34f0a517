package metric

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/pkg/async"
)

const namespace = "isoauth"

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeTransport   = "transport"
	OutcomeUnsupported = "unsupported"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// OutcomeOf classifies err into an outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrBackendRejected):
		return OutcomeRejected
	case errors.Is(err, domain.ErrTransport):
		return OutcomeTransport
	case errors.Is(err, domain.ErrUnsupportedInContext):
		return OutcomeUnsupported
	case errors.Is(err, async.ErrCanceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// Registry holds isoauth metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	BackendCalls     *prometheus.CounterVec
	AuthEvents       prometheus.Counter
	ObserversActive  prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus the isoauth families.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Facade operations by resolved context and outcome.",
		}, []string{"op", "context", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Facade operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "context"}),
		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Identity REST calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AuthEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Auth-state events published to observers.",
		}),
		ObserversActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observers_active",
			Help:      "Currently subscribed auth-state observers.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Gateway requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.DispatchTotal,
		r.DispatchDuration,
		r.BackendCalls,
		r.AuthEvents,
		r.ObserversActive,
		r.HTTPRequests,
		r.HTTPDuration,
	)
	return r
}

// RecordDispatch records one facade operation. A nil Registry is a no-op.
func (r *Registry) RecordDispatch(op, context, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.DispatchTotal.WithLabelValues(op, context, outcome).Inc()
	r.DispatchDuration.WithLabelValues(op, context).Observe(d.Seconds())
}

// RecordBackendCall records one identity REST call.
func (r *Registry) RecordBackendCall(endpoint, outcome string) {
	if r == nil {
		return
	}
	r.BackendCalls.WithLabelValues(endpoint, outcome).Inc()
}

// IncAuthEvents counts one published auth-state event.
func (r *Registry) IncAuthEvents() {
	if r == nil {
		return
	}
	r.AuthEvents.Inc()
}

// ObserverAdded and ObserverRemoved track live subscriptions.
func (r *Registry) ObserverAdded() {
	if r == nil {
		return
	}
	r.ObserversActive.Inc()
}

func (r *Registry) ObserverRemoved() {
	if r == nil {
		return
	}
	r.ObserversActive.Dec()
}

// RecordHTTPRequest records one gateway request.
func (r *Registry) RecordHTTPRequest(route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves this registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}
