package models

import "fmt"

// Domain error taxonomy. Errors are raised at the point of detection and
// carried unchanged to the HTTP boundary, which maps each type to a fixed
// status code (see handlers.respondError).

// ValidationError reports bad input shape or range. Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an absent entity. Maps to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthenticationError reports missing or invalid credentials. Maps to 401.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// AuthorizationError reports a permission failure. Maps to 403.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// ConflictError reports an invariant violation such as double checkout
// session creation. Maps to 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// SecurityError reports a webhook signature mismatch. Maps to 400 and is
// logged as a security event; never retried automatically.
type SecurityError struct {
	Message string
}

func (e *SecurityError) Error() string { return e.Message }

// UpstreamError reports an unavailable or timed-out external provider.
// Maps to 502.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }
