// Package httpserver provides the isoauth gateway's HTTP server.
//
//   - server.go: listener lifecycle
//   - router.go: route table and middleware chains
//   - middleware.go: RequestID, Recover, Audit, RateLimit, CORS
//
// API handlers live in the handler subpackage.
package httpserver
