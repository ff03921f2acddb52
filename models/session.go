package models

import "time"

// Stage is the current position of a conversation in the booking flow.
type Stage string

const (
	StageIdle                Stage = "IDLE"
	StageSearching           Stage = "SEARCHING"
	StageShowingResults      Stage = "SHOWING_RESULTS"
	StageFlightSelected      Stage = "FLIGHT_SELECTED"
	StageAddingServices      Stage = "ADDING_SERVICES"
	StageCollectingPassenger Stage = "COLLECTING_PASSENGER"
	StageConfirmingDetails   Stage = "CONFIRMING_DETAILS"
	StageBooking             Stage = "BOOKING"
	StageTicketing           Stage = "TICKETING"
	StageCompleted           Stage = "COMPLETED"
	StageCancelling          Stage = "CANCELLING"
	StageCancelled           Stage = "CANCELLED"
	StageFailed              Stage = "FAILED"
)

// Terminal reports whether no further booking events are accepted in this stage.
// A CANCELLED or FAILED session is never resumed; a new one is created instead.
func (s Stage) Terminal() bool {
	return s == StageCancelled || s == StageFailed
}

// ProviderRefs accumulates identifiers handed back by the inventory provider.
// Fields are append-only: once assigned they are never overwritten.
type ProviderRefs struct {
	TraceID      string `json:"traceId,omitempty"`
	BookingID    string `json:"bookingId,omitempty"`
	PNR          string `json:"pnr,omitempty"`
	TicketNumber string `json:"ticketNumber,omitempty"`
}

// PriceSnapshot is the last total the user has seen and implicitly agreed to.
type PriceSnapshot struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// PendingPriceChange is set while a fare-quote came back higher than the
// cached offer and the user has not yet acknowledged the new price.
type PendingPriceChange struct {
	Old  float64 `json:"old"`
	New  float64 `json:"new"`
	Diff float64 `json:"diff"`
}

// Session holds one user's booking conversation between messages.
type Session struct {
	UserID       string       `json:"userId"`
	Stage        Stage        `json:"stage"`
	SearchParams SearchParams `json:"searchParams"`

	// SelectedOffer references the fare cache; empty until a flight is chosen.
	SelectedOffer *OfferRef `json:"selectedOffer,omitempty"`
	// SelectedFlight is a display copy of the chosen offer. The cache entry
	// can expire before the session does; the booking record still needs the
	// flight details.
	SelectedFlight *Offer `json:"selectedFlight,omitempty"`
	// IsLCC picks the orchestration branch. Set once at selection and never
	// re-evaluated for the rest of the booking attempt.
	IsLCC bool `json:"isLcc"`

	Services   []ServiceSelection `json:"services,omitempty"`
	Passengers []Passenger        `json:"passengers,omitempty"`

	PriceSnapshot      PriceSnapshot       `json:"priceSnapshot"`
	PendingPriceChange *PendingPriceChange `json:"pendingPriceChange,omitempty"`
	ProviderRefs       ProviderRefs        `json:"providerRefs"`

	// QuoteTraceID is the fare-quote trace superseding the search trace for
	// the booking calls. Kept separate so ProviderRefs stays append-only.
	QuoteTraceID string `json:"quoteTraceId,omitempty"`

	// PendingCancellation holds the quoted refund while the user decides.
	PendingCancellation *CancellationQuote `json:"pendingCancellation,omitempty"`

	// IdempotencyKey tags the book/ticket calls of this booking attempt so a
	// retried confirmation replays instead of re-executing.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`

	FailureReason  string `json:"failureReason,omitempty"`
	BookingExists  bool   `json:"bookingExists,omitempty"`
	CancellationID string `json:"cancellationId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session's TTL has elapsed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
