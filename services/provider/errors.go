package provider

import (
	"errors"
	"fmt"
)

// Error is a provider-call failure. Transient errors (timeouts,
// 5xx-equivalents) are retried with backoff; validation-class errors never
// are.
type Error struct {
	Code      string
	Message   string
	Transient bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTransientError marks a failure as retryable.
func NewTransientError(code, msg string) error {
	return &Error{Code: code, Message: msg, Transient: true}
}

// NewFatalError marks a failure that must surface immediately.
func NewFatalError(code, msg string) error {
	return &Error{Code: code, Message: msg, Transient: false}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// ErrOfferExpired is reported when the provider no longer recognizes the
// trace id / result index pair. The session must return to a fresh search.
var ErrOfferExpired = NewFatalError("offerExpired", "the selected offer is no longer available")
