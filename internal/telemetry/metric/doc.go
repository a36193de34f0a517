// Package metric provides Prometheus metrics for isoauth.
//
//   - prometheus.go: Registry, recording helpers and the /metrics handler
//
// Metric families:
//
//   - isoauth_dispatch_total{op,context,outcome}
//   - isoauth_dispatch_duration_seconds{op,context}
//   - isoauth_backend_calls_total{endpoint,outcome}
//   - isoauth_auth_events_total
//   - isoauth_observers_active
//   - isoauth_http_requests_total{route,status}
//   - isoauth_http_request_duration_seconds{route}
package metric
