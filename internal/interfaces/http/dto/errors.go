package dto

import (
	"net/http"
	"strings"
)

// Error codes produced at the HTTP boundary. Domain errors keep their own
// codes; these cover failures that never reach a service.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// Domain error codes with a dedicated status
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeAlreadyExists        = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrCodeNotConnected         = "NOT_CONNECTED"
	ErrCodeUpstream             = "UPSTREAM_ERROR"
	ErrCodeUnknownSetting       = "UNKNOWN_SETTING"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidID:       http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeTokenRevoked:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeUnknownSetting:       http.StatusNotFound,
	ErrCodeForbidden:            http.StatusForbidden,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeNotConnected:         http.StatusConflict,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusUnprocessableEntity,
	"EXCEEDS_AMOUNT_DUE":        http.StatusUnprocessableEntity,
	"NOT_MATCHED":               http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeUpstream:             http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Codes outside the table fall back on their family: INVALID_* is a bad
// request, ALREADY_* a conflict, *_NOT_FOUND a missing resource. Anything
// else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
