package errors

import "fmt"

// UpstreamError wraps a failure talking to an external service, such as the
// uploads store or the delivery webhook.
type UpstreamError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an upstream error for the named service
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}
