package domain

import (
	"errors"
	"net/http"
)

// Error is a domain failure with a machine-readable code and the HTTP status
// it maps to at the boundary. Services return these (optionally wrapped with
// %w for context); the HTTP layer translates them into the wire envelope.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Typed domain errors. Everything the end user can recover from is enumerated
// here; anything else is treated as an internal fault by the boundary.
var (
	ErrValidation        = &Error{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "invalid request"}
	ErrOTPNotFound       = &Error{Code: "OTP_NOT_FOUND", Status: http.StatusBadRequest, Message: "no verification code requested for this email"}
	ErrOTPExpired        = &Error{Code: "OTP_EXPIRED", Status: http.StatusBadRequest, Message: "verification code has expired"}
	ErrOTPInvalid        = &Error{Code: "OTP_INVALID", Status: http.StatusBadRequest, Message: "verification code is invalid"}
	ErrOTPMaxAttempts    = &Error{Code: "OTP_MAX_ATTEMPTS_EXCEEDED", Status: http.StatusBadRequest, Message: "too many failed attempts, request a new code"}
	ErrOTPCooldownActive = &Error{Code: "OTP_COOLDOWN_ACTIVE", Status: http.StatusTooManyRequests, Message: "a code was sent recently, wait before requesting another"}
	ErrTokenExpired      = &Error{Code: "TOKEN_EXPIRED", Status: http.StatusUnauthorized, Message: "token has expired"}
	ErrTokenInvalid      = &Error{Code: "TOKEN_INVALID", Status: http.StatusUnauthorized, Message: "token is invalid or revoked"}
	ErrTokenRequired     = &Error{Code: "TOKEN_REQUIRED", Status: http.StatusUnauthorized, Message: "refresh token is required"}
	ErrUnauthorized      = &Error{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized, Message: "authentication required"}
	ErrNotFound          = &Error{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "not found"}
	ErrRateLimitExceeded = &Error{Code: "RATE_LIMIT_EXCEEDED", Status: http.StatusTooManyRequests, Message: "too many requests"}
)

// AsError unwraps err to a *Error if one is anywhere in its chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ValidationError returns a VALIDATION_ERROR carrying a specific message.
func ValidationError(msg string) *Error {
	return &Error{Code: ErrValidation.Code, Status: ErrValidation.Status, Message: msg}
}
