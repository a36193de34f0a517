// Package domain defines the core identity models for isoauth.
//
// It contains:
//
//   - Session: the authenticated identity projection
//   - AuthEvent: session state-change notification
//   - Credential, ProfileUpdate: opaque inputs forwarded to backends
//   - Errors: coded errors shared by every layer
package domain
