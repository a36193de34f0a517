// Package token derives non-secret references to bearer credentials so
// that logs can correlate requests made with the same refresh token
// without ever carrying the token itself.
package token
