package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error carrying a structured isoauth error code.
//
// Codes have the form IA-<AREA>-<NNNN>; the numeric suffix mirrors the
// HTTP status class the gateway maps it to.
type DomainError struct {
	Code    string // Error code (e.g., "IA-CTX-4050")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// RejectionReason returns the backend-supplied reason of a rejection
// (for example EMAIL_NOT_FOUND), or "" when err is not a rejection.
func RejectionReason(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Code == ErrBackendRejected.Code {
		return de.Details
	}
	return ""
}

// ============================================================================
// Dispatch errors
// ============================================================================

var (
	// ErrTransport indicates the request never produced a usable
	// response: dial failure, timeout, or an undecodable body.
	ErrTransport = NewDomainError("IA-TRAN-5020", "identity transport failure")

	// ErrBackendRejected indicates the identity backend refused the call.
	// Details carries the backend's reason verbatim.
	ErrBackendRejected = NewDomainError("IA-BACK-4000", "identity backend rejected the request")

	// ErrUnsupportedInContext indicates the operation has no behavior in
	// the current execution context.
	ErrUnsupportedInContext = NewDomainError("IA-CTX-4050", "operation unsupported in this context")

	// ErrNoSession indicates a privileged call was made with nobody signed in.
	ErrNoSession = NewDomainError("IA-SESS-4010", "no signed-in session")
)

// ============================================================================
// Configuration errors
// ============================================================================

var (
	// ErrMissingAPIKey indicates identity.api_key was not configured.
	ErrMissingAPIKey = NewDomainError("IA-CONF-4001", "identity api key not configured")

	// ErrInvalidConfig indicates a configuration value is malformed.
	ErrInvalidConfig = NewDomainError("IA-CONF-4002", "invalid configuration")

	// ErrInvalidArgument indicates a caller-supplied argument was malformed.
	ErrInvalidArgument = NewDomainError("IA-ARG-4001", "invalid argument")
)
