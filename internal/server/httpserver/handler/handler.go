package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/service"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
	"github.com/yndnr/isoauth-go/pkg/token"
)

// RefreshTokenHeader carries the caller's refresh token on privileged
// routes.
const RefreshTokenHeader = "X-Refresh-Token"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the /v1/auth API and the health probes.
type Handler struct {
	disp   *service.Dispatcher
	client *identitytoolkit.Client
	ready  func(context.Context) error
	log    logger.Logger
	mux    *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithReadiness sets the /ready check. Without it /ready always passes.
func WithReadiness(check func(context.Context) error) Option {
	return func(h *Handler) { h.ready = check }
}

// New creates a Handler. client exchanges refresh tokens from the
// X-Refresh-Token header.
func New(disp *service.Dispatcher, client *identitytoolkit.Client, log logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Default()
	}
	h := &Handler{
		disp:   disp,
		client: client,
		log:    log,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes lists the registered patterns, for metrics labels.
func Routes() []string {
	return []string{
		"GET /health",
		"GET /ready",
		"GET /v1/auth/me",
		"POST /v1/auth/signin",
		"POST /v1/auth/signin-anonymous",
		"POST /v1/auth/signup",
		"POST /v1/auth/signout",
		"POST /v1/auth/profile",
		"POST /v1/auth/email",
		"POST /v1/auth/password",
		"POST /v1/auth/verify-email",
		"POST /v1/auth/password-reset",
		"POST /v1/auth/password-reset/verify",
		"POST /v1/auth/password-reset/confirm",
		"POST /v1/auth/relogin",
		"POST /v1/auth/delete",
		"POST /v1/auth/providers",
	}
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /v1/auth/me", h.withRefreshToken(h.handleMe))
	h.mux.HandleFunc("POST /v1/auth/signin", h.handleSignIn)
	h.mux.HandleFunc("POST /v1/auth/signin-anonymous", h.handleSignInAnonymously)
	h.mux.HandleFunc("POST /v1/auth/signup", h.handleSignUp)
	h.mux.HandleFunc("POST /v1/auth/signout", h.handleSignOut)
	h.mux.HandleFunc("POST /v1/auth/profile", h.withRefreshToken(h.handleUpdateProfile))
	h.mux.HandleFunc("POST /v1/auth/email", h.withRefreshToken(h.handleUpdateEmail))
	h.mux.HandleFunc("POST /v1/auth/password", h.withRefreshToken(h.handleUpdatePassword))
	h.mux.HandleFunc("POST /v1/auth/verify-email", h.withRefreshToken(h.handleSendEmailVerification))
	h.mux.HandleFunc("POST /v1/auth/password-reset", h.handleSendPasswordReset)
	h.mux.HandleFunc("POST /v1/auth/password-reset/verify", h.handleVerifyResetCode)
	h.mux.HandleFunc("POST /v1/auth/password-reset/confirm", h.handleConfirmReset)
	h.mux.HandleFunc("POST /v1/auth/relogin", h.withRefreshToken(h.handleRelogin))
	h.mux.HandleFunc("POST /v1/auth/delete", h.withRefreshToken(h.handleDelete))
	h.mux.HandleFunc("POST /v1/auth/providers", h.handleProviders)
}

// withRefreshToken binds the X-Refresh-Token header to the request
// context as the token source for privileged operations, and tags the
// request logger with the token's fingerprint. Without the header the
// operation fails with no session.
func (h *Handler) withRefreshToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt := r.Header.Get(RefreshTokenHeader); rt != "" {
			src := identitytoolkit.NewRefreshTokenSource(h.client, rt)
			ctx := backend.ContextWithTokenSource(r.Context(), src)
			ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With("session_ref", token.Fingerprint(rt)))
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

// decode reads a JSON body into v. Empty bodies leave v untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// handleServiceError converts an operation error to a response. The
// backend's rejection reason is passed through as details.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)

	var de *domain.DomainError
	if !errors.As(err, &de) {
		if status == http.StatusInternalServerError {
			logger.L(r.Context()).Error("internal error", "error", err)
		}
		msg := http.StatusText(status)
		if msg == "" {
			msg = "request canceled"
		}
		h.writeError(w, r, status, code, msg, nil)
		return
	}

	var details any
	if de.Details != "" {
		details = de.Details
	}
	h.writeError(w, r, status, code, de.Message, details)
}
