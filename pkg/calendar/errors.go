package calendar

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is a provider-independent failure tag. Adapters translate
// provider-specific conditions into one of these codes.
type ErrorCode string

const (
	ErrCodeNetwork      ErrorCode = "network"
	ErrCodeRateLimited  ErrorCode = "rate_limited"
	ErrCodeServerError  ErrorCode = "server_error"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	ErrCodeBadResponse  ErrorCode = "bad_response"
	ErrCodeNotSupported ErrorCode = "not_supported"
	ErrCodeCancelled    ErrorCode = "cancelled"
	ErrCodeUnknown      ErrorCode = "unknown"
)

// TemporaryError marks a fetch failure that may succeed if the same call
// is repeated (network faults, rate limiting, provider 5xx).
type TemporaryError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func NewTemporaryError(code ErrorCode, message string, cause error) *TemporaryError {
	return &TemporaryError{Code: code, Message: message, Cause: cause}
}

func (e *TemporaryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TemporaryError) Unwrap() error {
	return e.Cause
}

// PermanentError marks a fetch failure that retrying cannot fix
// (rejected credentials, unsupported provider, response schema violation).
type PermanentError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func NewPermanentError(code ErrorCode, message string, cause error) *PermanentError {
	return &PermanentError{Code: code, Message: message, Cause: cause}
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// StatusError translates an HTTP response status into the shared
// temporary/permanent taxonomy used by all provider adapters.
// 429 and 5xx are transient provider conditions; 401/403 mean the
// credential was rejected and retrying the same token cannot help.
func StatusError(provider string, status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return NewTemporaryError(ErrCodeRateLimited, fmt.Sprintf("%s API rate limited the request (status %d)", provider, status), nil)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewTemporaryError(ErrCodeServerError, fmt.Sprintf("%s API returned a server error (status %d)", provider, status), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewPermanentError(ErrCodeUnauthorized, fmt.Sprintf("%s API rejected the access token (status %d)", provider, status), nil)
	default:
		return NewPermanentError(ErrCodeUnknown, fmt.Sprintf("%s API returned unexpected status %d", provider, status), nil)
	}
}

// FetchError is the terminal, classified failure of a fetch attempt
// sequence. Retryable is decided once, when the terminal error is
// classified, and never re-evaluated afterwards.
type FetchError struct {
	Provider   string
	Code       ErrorCode
	Message    string
	Retryable  bool
	OccurredAt time.Time
	Cause      error
	CalendarID string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed (%s): %s", e.Provider, e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
