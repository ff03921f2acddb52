package booking

import (
	"context"
	"time"

	bookingRepo "skybook/database/repository/booking"
	"skybook/models"
	"skybook/services/farecache"
	"skybook/services/notification"
	"skybook/services/provider"
	"skybook/utils"
)

// Policy carries the configurable booking constants the flow depends on.
type Policy struct {
	SessionTTL      time.Duration
	CancellationFee float64
	Currency        string
}

// FareResult is the outcome of fare re-verification. Exactly one of the two
// advancement outcomes applies: PriceIncreased set means the session stays put
// pending acknowledgement.
type FareResult struct {
	Quote          models.FareQuote
	PriceIncreased *models.PendingPriceChange
}

// PassengerProgress reports collection progress after each passenger.
type PassengerProgress struct {
	Collected int
	Required  int
}

// Complete reports whether all passengers have been collected.
func (p PassengerProgress) Complete() bool { return p.Collected >= p.Required }

// BookingSessionService drives one user's booking conversation through the
// stage machine. Every method serializes on the per-user lock; events invalid
// for the current stage are rejected with a StateError and leave the session
// untouched.
type BookingSessionService interface {
	StartSearch(ctx context.Context, userID string, params models.SearchParams) (*models.Session, []models.Offer, error)
	SelectOffer(ctx context.Context, userID string, index int) (*models.Session, *models.Offer, error)
	ConfirmFare(ctx context.Context, userID string) (*models.Session, *FareResult, error)
	AcknowledgePriceChange(ctx context.Context, userID string, accept bool) (*models.Session, error)
	ServiceCatalog(ctx context.Context, userID string) (*models.ServiceCatalog, error)
	AddServices(ctx context.Context, userID string, selections []models.ServiceSelection) (*models.Session, error)
	AddPassenger(ctx context.Context, userID string, passenger models.Passenger) (*models.Session, PassengerProgress, error)
	Confirm(ctx context.Context, userID string, accepted bool) (*models.Session, *models.BookingRecord, error)
	RequestCancellation(ctx context.Context, userID, pnr string) (*models.CancellationQuote, error)
	ConfirmCancellation(ctx context.Context, userID string, confirm bool) (*models.CancellationRecord, error)
	Status(ctx context.Context, pnr string) (*models.BookingRecord, error)
	CurrentSession(ctx context.Context, userID string) (*models.Session, error)
}

// DefaultBookingSessionService implements BookingSessionService.
type DefaultBookingSessionService struct {
	Store    SessionStore
	Cache    farecache.Cache
	Provider provider.Client
	Retry    provider.RetryPolicy
	Breaker  provider.CircuitBreaker
	Records  bookingRepo.BookingRecordRepository
	Notifier notification.Dispatcher
	Locks    *utils.SessionLocks
	Policy   Policy

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

func (s *DefaultBookingSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
