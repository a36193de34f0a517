package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// Gateway-local error codes.
const (
	CodeBadRequest = "IA-HTTP-4000"
	CodeInternal   = "IA-SYS-5000"
	CodeCanceled   = "IA-SYS-4990"
	CodeTimeout    = "IA-SYS-5040"
)

// rejectionStatus maps well-known backend reasons to HTTP statuses. A
// reason may carry a description after the first space.
var rejectionStatus = map[string]int{
	"EMAIL_NOT_FOUND":             http.StatusUnauthorized,
	"INVALID_PASSWORD":            http.StatusUnauthorized,
	"INVALID_EMAIL":               http.StatusBadRequest,
	"WEAK_PASSWORD":               http.StatusBadRequest,
	"MISSING_PASSWORD":            http.StatusBadRequest,
	"EMAIL_EXISTS":                http.StatusConflict,
	"USER_DISABLED":               http.StatusForbidden,
	"USER_NOT_FOUND":              http.StatusNotFound,
	"USER_MISMATCH":               http.StatusForbidden,
	"INVALID_ID_TOKEN":            http.StatusUnauthorized,
	"TOKEN_EXPIRED":               http.StatusUnauthorized,
	"INVALID_REFRESH_TOKEN":       http.StatusUnauthorized,
	"EXPIRED_OOB_CODE":            http.StatusBadRequest,
	"INVALID_OOB_CODE":            http.StatusBadRequest,
	"OPERATION_NOT_ALLOWED":       http.StatusForbidden,
	"TOO_MANY_ATTEMPTS_TRY_LATER": http.StatusTooManyRequests,
}

// errorStatus maps an operation error to an HTTP status and code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBackendRejected):
		reason, _, _ := strings.Cut(domain.RejectionReason(err), " ")
		if status, ok := rejectionStatus[reason]; ok {
			return status, domain.ErrBackendRejected.Code
		}
		return http.StatusBadRequest, domain.ErrBackendRejected.Code
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway, domain.ErrTransport.Code
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, domain.ErrNoSession.Code
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, domain.ErrInvalidArgument.Code
	case errors.Is(err, domain.ErrUnsupportedInContext):
		return http.StatusNotImplemented, domain.ErrUnsupportedInContext.Code
	case errors.Is(err, domain.ErrMissingAPIKey), errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusInternalServerError, domain.GetErrorCode(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, context.Canceled):
		return 499, CodeCanceled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
