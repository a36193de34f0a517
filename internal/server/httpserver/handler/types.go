package handler

import (
	"time"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// Response is the API response envelope. /metrics is the only route
// answering in another format.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// EmailPasswordRequest is the body of POST /v1/auth/signin and /signup.
type EmailPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileRequest is the body of POST /v1/auth/profile.
type ProfileRequest struct {
	DisplayName     string   `json:"display_name,omitempty"`
	PhotoURL        string   `json:"photo_url,omitempty"`
	DeleteAttribute []string `json:"delete_attribute,omitempty"`
}

// EmailRequest is the body of POST /v1/auth/email, /password-reset and
// /providers.
type EmailRequest struct {
	Email string `json:"email"`
}

// PasswordRequest is the body of POST /v1/auth/password.
type PasswordRequest struct {
	Password string `json:"password"`
}

// ResetCodeRequest is the body of POST /v1/auth/password-reset/verify
// and /confirm.
type ResetCodeRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password,omitempty"`
}

// CredentialRequest is the body of POST /v1/auth/relogin and /delete.
type CredentialRequest struct {
	Credential domain.Credential `json:"credential"`
}

// SessionResponse is a session as returned to gateway callers. Tokens
// are included only by the sign-in routes.
type SessionResponse struct {
	*domain.Session
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

func newSessionResponse(s *domain.Session) *SessionResponse {
	if s == nil {
		return nil
	}
	return &SessionResponse{Session: s, ExpiresIn: int64(s.ExpiresIn / time.Second)}
}

// ProvidersResponse is the response of POST /v1/auth/providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// EmailResponse is the response of POST /v1/auth/password-reset/verify.
type EmailResponse struct {
	Email string `json:"email"`
}
