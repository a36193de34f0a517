package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/pkg/async"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.DispatchTotal == nil || r.DispatchDuration == nil || r.BackendCalls == nil {
		t.Error("dispatch or backend families not initialized")
	}
	if r.AuthEvents == nil || r.ObserversActive == nil {
		t.Error("broadcast families not initialized")
	}
	if r.HTTPRequests == nil || r.HTTPDuration == nil {
		t.Error("http families not initialized")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler_RuntimeCollectors(t *testing.T) {
	body := scrape(t, Handler())
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRecordDispatch(t *testing.T) {
	r := NewRegistry()
	r.RecordDispatch("signin", "server", OutcomeOK, 10*time.Millisecond)
	r.RecordDispatch("signin", "server", OutcomeOK, 20*time.Millisecond)
	r.RecordDispatch("signin", "client", OutcomeRejected, time.Millisecond)

	body := scrape(t, r.Handler())
	for _, want := range []string{
		`isoauth_dispatch_total{context="server",op="signin",outcome="ok"} 2`,
		`isoauth_dispatch_total{context="client",op="signin",outcome="rejected"} 1`,
		`isoauth_dispatch_duration_seconds_count{context="server",op="signin"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestBroadcastMetrics(t *testing.T) {
	r := NewRegistry()
	r.IncAuthEvents()
	r.IncAuthEvents()
	r.ObserverAdded()
	r.ObserverAdded()
	r.ObserverRemoved()

	body := scrape(t, r.Handler())
	if !strings.Contains(body, "isoauth_auth_events_total 2") {
		t.Error("expected isoauth_auth_events_total 2")
	}
	if !strings.Contains(body, "isoauth_observers_active 1") {
		t.Error("expected isoauth_observers_active 1")
	}
}

func TestBackendAndHTTPMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordBackendCall("verifyPassword", OutcomeRejected)
	r.RecordHTTPRequest("POST /v1/auth/signin", 400, 5*time.Millisecond)

	body := scrape(t, r.Handler())
	if !strings.Contains(body, `isoauth_backend_calls_total{endpoint="verifyPassword",outcome="rejected"} 1`) {
		t.Error("expected backend call counter")
	}
	if !strings.Contains(body, `isoauth_http_requests_total{route="POST /v1/auth/signin",status="400"} 1`) {
		t.Error("expected http request counter")
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.RecordDispatch("signin", "server", OutcomeOK, time.Millisecond)
	r.RecordBackendCall("x", OutcomeOK)
	r.IncAuthEvents()
	r.ObserverAdded()
	r.ObserverRemoved()
	r.RecordHTTPRequest("x", 200, time.Millisecond)
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{domain.ErrBackendRejected.WithDetails("EMAIL_NOT_FOUND"), OutcomeRejected},
		{domain.ErrTransport, OutcomeTransport},
		{domain.ErrUnsupportedInContext, OutcomeUnsupported},
		{async.ErrCanceled, OutcomeCanceled},
		{domain.ErrNoSession, OutcomeError},
	}
	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
