package backend

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks a bridge operation the local runtime does not
// implement. Callers treat it as "local unavailable", never a crash.
var ErrUnsupported = errors.New("backend: operation not supported by runtime")

// ServiceError is the failure type surfaced by the router, the remote
// backend and the local lifecycle: non-200 responses, transport failures,
// timeouts and not-ready conditions. StatusCode is 0 for non-HTTP failures.
type ServiceError struct {
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return "backend: " + e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a plain ServiceError.
func NewServiceError(message string) *ServiceError {
	return &ServiceError{Message: message}
}

// NewHTTPError creates a ServiceError for a non-200 response. The message
// is the server's error-envelope message when available, else the raw body,
// else "HTTP {code}".
func NewHTTPError(statusCode int, message string) *ServiceError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &ServiceError{Message: message, StatusCode: statusCode}
}

// NewTransportError wraps a network-level failure.
func NewTransportError(cause error) *ServiceError {
	return &ServiceError{Message: "request failed: " + cause.Error(), Cause: cause}
}

// NewTimeoutError marks a request that exceeded its deadline.
func NewTimeoutError(cause error) *ServiceError {
	return &ServiceError{Message: "request timed out", Cause: cause}
}

// NewNotReadyError marks an ask against a local model that is not ready.
func NewNotReadyError(status Status) *ServiceError {
	return &ServiceError{Message: fmt.Sprintf("local model not ready (status %s)", status)}
}

// AsServiceError unwraps err to a *ServiceError if one is in the chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
