package httpserver

import (
	"net/http"

	"github.com/yndnr/isoauth-go/internal/server/httpserver/handler"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
	"github.com/yndnr/isoauth-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the API routes.
	Handler *handler.Handler

	// Metrics records request counts and serves /metrics. Nil disables
	// both.
	Metrics *metric.Registry

	// Logger is bound to every request context.
	Logger logger.Logger

	// CORSOrigins lists allowed browser origins (empty disables CORS).
	CORSOrigins []string

	// Limiter bounds /v1 requests per client IP. Nil disables limiting.
	Limiter *IPLimiter
}

// NewRouter wires every route with its middleware chain:
// RequestID -> Recover -> Audit -> CORS -> RateLimit -> handler.
// Probes and /metrics are not rate limited.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	mux := http.NewServeMux()
	for _, route := range handler.Routes() {
		chain := []Middleware{
			RequestID(log),
			Recover(),
			Audit(route, cfg.Metrics),
			CORS(cfg.CORSOrigins),
		}
		if cfg.Limiter != nil && route != "GET /health" && route != "GET /ready" {
			chain = append(chain, RateLimit(cfg.Limiter))
		}
		mux.Handle(route, Chain(cfg.Handler, chain...))
	}

	// Preflight requests never reach a handler.
	mux.Handle("OPTIONS /v1/", Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		RequestID(log),
		CORS(cfg.CORSOrigins),
	))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover()))
	}

	return mux
}
