package booking

import (
	"errors"
	"fmt"

	"skybook/models"
)

// ErrSessionNotFound means the user has no live session.
var ErrSessionNotFound = errors.New("booking session not found")

// ErrSessionExpired means the session's TTL elapsed; the caller starts a
// fresh session for the same user.
var ErrSessionExpired = errors.New("booking session expired")

// StateError rejects an event that is not valid for the session's current
// stage. Session state is left untouched.
type StateError struct {
	Stage    models.Stage
	Event    string
	Expected string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("stateError: event %q not valid in stage %s (expected: %s)", e.Event, e.Stage, e.Expected)
}

// FlowError is a user-correctable booking-flow rejection.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewFlowError(code, msg string) error {
	return &FlowError{Code: code, Message: msg}
}

// Flow rejection codes.
const (
	CodeInvalidSelection    = "invalidSelection"
	CodeResultsExpired      = "resultsExpired"
	CodeOfferExpired        = "offerExpired"
	CodeMandatorySSRMissing = "mandatorySSRMissing"
	CodePriceChangePending  = "priceChangePending"
	CodePassengerLimit      = "passengerLimit"
)

// Failure reasons recorded on a session that reached FAILED.
const (
	ReasonSearchFailed  = "SearchFailed"
	ReasonQuoteFailed   = "QuoteFailed"
	ReasonBookingFailed = "BookingFailed"
	ReasonTicketFailed  = "TicketFailed"
)

// IsFlowCode reports whether err is a FlowError with the given code.
func IsFlowCode(err error, code string) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}
