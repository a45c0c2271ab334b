package dto

import (
	"net/http"

	"github.com/erp/fulfillment/internal/domain/shared"
)

// Codes raised at the HTTP boundary that have no domain counterpart
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeJobPending      = "JOB_PENDING"
	ErrCodeJobUnavailable  = "JOB_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:                http.StatusNotFound,
	shared.CodeConflict:                http.StatusConflict,
	shared.CodeNoOpTransfer:            http.StatusConflict,
	shared.CodeConcurrencyConflict:     http.StatusConflict,
	shared.CodeValidationFailed:        http.StatusBadRequest,
	shared.CodeInsufficientStock:       http.StatusUnprocessableEntity,
	shared.CodeInsufficientPayment:     http.StatusUnprocessableEntity,
	shared.CodeUnresolvableBoxFraction: http.StatusUnprocessableEntity,
	shared.CodeInvalidState:            http.StatusUnprocessableEntity,
	shared.CodePermissionDenied:        http.StatusForbidden,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeJobPending:      http.StatusConflict,
	ErrCodeJobUnavailable:  http.StatusServiceUnavailable,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
