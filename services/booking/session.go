// Package booking drives the per-user flight-booking state machine and the
// provider call sequences behind it.
package booking

import (
	"context"
	"errors"
	"fmt"

	"skybook/models"
	"skybook/services/farecache"
	"skybook/services/provider"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loadSession fetches the caller's live session, enforcing expiry lazily: an
// expired session is discarded and reported, never resumed.
func (s *DefaultBookingSessionService) loadSession(ctx context.Context, userID string) (*models.Session, error) {
	session, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		if err := s.Store.Delete(ctx, userID); err != nil {
			zap.L().Warn("failed to discard expired session", zap.String("userId", userID), zap.Error(err))
		}
		return nil, ErrSessionExpired
	}
	return session, nil
}

// midBooking reports whether the stage is past result selection and before a
// terminal state: the stretch where a new search must not silently discard
// accumulated work.
func midBooking(stage models.Stage) bool {
	switch stage {
	case models.StageFlightSelected, models.StageAddingServices, models.StageCollectingPassenger,
		models.StageConfirmingDetails, models.StageBooking, models.StageTicketing, models.StageCancelling:
		return true
	}
	return false
}

// StartSearch begins a new search. Accepted from IDLE, SHOWING_RESULTS,
// COMPLETED, CANCELLED and FAILED (re-issuing after a failed search); a
// session mid-booking rejects it so accumulated selections are not silently
// dropped.
func (s *DefaultBookingSessionService) StartSearch(ctx context.Context, userID string, params models.SearchParams) (*models.Session, []models.Offer, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	existing, err := s.loadSession(ctx, userID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return nil, nil, err
	}
	if existing != nil && midBooking(existing.Stage) {
		return nil, nil, &StateError{Stage: existing.Stage, Event: "search_request",
			Expected: "finish or abandon the current booking first"}
	}

	now := s.now()
	session := &models.Session{
		UserID:       userID,
		Stage:        models.StageSearching,
		SearchParams: params,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.Policy.SessionTTL),
	}

	traceID, offers, err := s.searchOffers(ctx, params)
	if err != nil {
		s.failSession(ctx, session, ReasonSearchFailed)
		return nil, nil, err
	}

	session.Stage = models.StageShowingResults
	session.ProviderRefs.TraceID = traceID
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, offers, nil
}

// SelectOffer picks one of the shown results by index. The index must
// reference a cached, non-expired offer; otherwise the state is unchanged.
func (s *DefaultBookingSessionService) SelectOffer(ctx context.Context, userID string, index int) (*models.Session, *models.Offer, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Stage != models.StageShowingResults {
		return nil, nil, &StateError{Stage: session.Stage, Event: "selection", Expected: "a flight search with results"}
	}

	offer, err := s.Cache.Resolve(ctx, session.ProviderRefs.TraceID, index)
	switch {
	case errors.Is(err, farecache.ErrExpired):
		return nil, nil, NewFlowError(CodeResultsExpired, "these results have expired, please search again")
	case errors.Is(err, farecache.ErrNotFound):
		return nil, nil, NewFlowError(CodeInvalidSelection, fmt.Sprintf("option %d is not one of the shown flights", index+1))
	case err != nil:
		return nil, nil, err
	}

	session.SelectedOffer = &models.OfferRef{TraceID: session.ProviderRefs.TraceID, ResultIndex: offer.ResultIndex}
	session.SelectedFlight = offer
	session.IsLCC = offer.IsLCC
	session.PriceSnapshot = models.PriceSnapshot{Total: offer.Total, Currency: offer.Currency}
	session.Stage = models.StageFlightSelected
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, offer, nil
}

// ConfirmFare re-verifies the selected fare with the provider. A higher quote
// keeps the session at FLIGHT_SELECTED pending explicit acknowledgement; a
// lower or unchanged quote updates the snapshot and advances.
func (s *DefaultBookingSessionService) ConfirmFare(ctx context.Context, userID string) (*models.Session, *FareResult, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Stage != models.StageFlightSelected || session.SelectedOffer == nil {
		return nil, nil, &StateError{Stage: session.Stage, Event: "fare_confirmed", Expected: "a selected flight"}
	}

	quote, err := s.quoteFare(ctx, *session.SelectedOffer)
	if err != nil {
		if errors.Is(err, provider.ErrOfferExpired) {
			// The result index no longer resolves; back to the results so a
			// fresh search can be issued.
			session.SelectedOffer = nil
			session.SelectedFlight = nil
			session.PendingPriceChange = nil
			session.Stage = models.StageShowingResults
			if saveErr := s.Store.Save(ctx, session); saveErr != nil {
				return nil, nil, saveErr
			}
			return session, nil, NewFlowError(CodeOfferExpired, "that fare is no longer available, please search again")
		}
		s.failSession(ctx, session, ReasonQuoteFailed)
		return nil, nil, err
	}

	cached := session.PriceSnapshot.Total
	if quote.Total > cached {
		session.PendingPriceChange = &models.PendingPriceChange{
			Old:  cached,
			New:  quote.Total,
			Diff: quote.Total - cached,
		}
		session.QuoteTraceID = quote.TraceID
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, nil, err
		}
		return session, &FareResult{Quote: *quote, PriceIncreased: session.PendingPriceChange}, nil
	}

	session.PriceSnapshot = models.PriceSnapshot{Total: quote.Total, Currency: quote.Currency}
	session.QuoteTraceID = quote.TraceID
	session.PendingPriceChange = nil
	session.Stage = models.StageAddingServices
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, &FareResult{Quote: *quote}, nil
}

// AcknowledgePriceChange resolves a pending price increase: accept advances
// at the new price, decline returns to the results list.
func (s *DefaultBookingSessionService) AcknowledgePriceChange(ctx context.Context, userID string, accept bool) (*models.Session, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageFlightSelected || session.PendingPriceChange == nil {
		return nil, &StateError{Stage: session.Stage, Event: "price_change_ack", Expected: "a pending price change"}
	}

	if accept {
		session.PriceSnapshot.Total = session.PendingPriceChange.New
		session.PendingPriceChange = nil
		session.Stage = models.StageAddingServices
	} else {
		session.SelectedOffer = nil
		session.SelectedFlight = nil
		session.PendingPriceChange = nil
		session.QuoteTraceID = ""
		session.Stage = models.StageShowingResults
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ServiceCatalog loads the SSR options available for the selected flight.
func (s *DefaultBookingSessionService) ServiceCatalog(ctx context.Context, userID string) (*models.ServiceCatalog, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageAddingServices {
		return nil, &StateError{Stage: session.Stage, Event: "fetch_services", Expected: "a confirmed fare"}
	}
	return s.fetchCatalog(ctx, session)
}

// AddServices records the user's SSR selections. LCC fares carry no free
// baggage, so at least one baggage item is mandatory on that branch; a
// full-service fare may skip services entirely.
func (s *DefaultBookingSessionService) AddServices(ctx context.Context, userID string, selections []models.ServiceSelection) (*models.Session, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageAddingServices {
		return nil, &StateError{Stage: session.Stage, Event: "services_selected", Expected: "a confirmed fare"}
	}
	if session.IsLCC && !models.HasBaggage(selections) {
		return nil, NewFlowError(CodeMandatorySSRMissing, "this airline requires a baggage selection")
	}

	session.Services = selections
	session.PriceSnapshot.Total += models.ServicesTotal(selections)
	session.Stage = models.StageCollectingPassenger
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddPassenger appends one validated passenger record. The stage advances
// once the validated count equals the passenger count from the search.
func (s *DefaultBookingSessionService) AddPassenger(ctx context.Context, userID string, passenger models.Passenger) (*models.Session, PassengerProgress, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, PassengerProgress{}, err
	}
	if session.Stage != models.StageCollectingPassenger {
		return nil, PassengerProgress{}, &StateError{Stage: session.Stage, Event: "passenger_added", Expected: "service selection to be done"}
	}

	required := session.SearchParams.PassengerCount()
	if len(session.Passengers) >= required {
		return nil, PassengerProgress{}, NewFlowError(CodePassengerLimit,
			fmt.Sprintf("all %d passengers are already recorded", required))
	}

	// The first record is the lead passenger and must carry contact details;
	// confirmations go to the lead's phone and email.
	if len(session.Passengers) == 0 {
		passenger.Lead = true
		if passenger.Phone == "" || passenger.Email == "" {
			return nil, PassengerProgress{}, NewFlowError(CodePassengerLimit,
				"the lead passenger needs a phone number and email")
		}
	} else {
		passenger.Lead = false
	}

	session.Passengers = append(session.Passengers, passenger)
	progress := PassengerProgress{Collected: len(session.Passengers), Required: required}
	if progress.Complete() {
		session.Stage = models.StageConfirmingDetails
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, PassengerProgress{}, err
	}
	return session, progress, nil
}

// Confirm processes the final yes/no. A yes executes the carrier-appropriate
// booking sequence; a re-sent yes on a session at or past BOOKING replays the
// stored outcome under the same idempotency key instead of booking twice.
// A no returns to passenger collection for revision.
func (s *DefaultBookingSessionService) Confirm(ctx context.Context, userID string, accepted bool) (*models.Session, *models.BookingRecord, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if !accepted {
		if session.Stage != models.StageConfirmingDetails {
			return nil, nil, &StateError{Stage: session.Stage, Event: "confirm", Expected: "details awaiting confirmation"}
		}
		session.Passengers = nil
		session.Stage = models.StageCollectingPassenger
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, nil, err
		}
		return session, nil, nil
	}

	switch session.Stage {
	case models.StageConfirmingDetails:
		session.IdempotencyKey = uuid.New().String()
		session.Stage = models.StageBooking
		// Persist BOOKING before any provider call: an ambiguous crash here
		// resumes under the same idempotency key.
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, nil, err
		}
	case models.StageBooking, models.StageTicketing:
		// Retried confirmation of an in-flight attempt: resume, same key.
	case models.StageCompleted:
		record, err := s.Records.GetByPNR(ctx, session.ProviderRefs.PNR)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load completed booking: %w", err)
		}
		return session, record, nil
	default:
		return nil, nil, &StateError{Stage: session.Stage, Event: "confirm", Expected: "details awaiting confirmation"}
	}

	if err := s.executeBooking(ctx, session); err != nil {
		return nil, nil, err
	}

	record := s.buildRecord(session)
	if _, err := s.Records.Create(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to persist booking record: %w", err)
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	if err := s.Notifier.DispatchBooking(ctx, record); err != nil {
		// The booking stands regardless of delivery.
		zap.L().Error("failed to dispatch booking notification",
			zap.String("pnr", record.PNR), zap.Error(err))
	}
	return session, &record, nil
}

// RequestCancellation quotes the refund for a completed booking and moves the
// session to CANCELLING pending the user's decision.
func (s *DefaultBookingSessionService) RequestCancellation(ctx context.Context, userID, pnr string) (*models.CancellationQuote, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageCompleted {
		return nil, &StateError{Stage: session.Stage, Event: "cancel_request", Expected: "a completed booking"}
	}
	if pnr != "" && pnr != session.ProviderRefs.PNR {
		return nil, NewFlowError(CodeInvalidSelection, fmt.Sprintf("no booking %s on this conversation", pnr))
	}

	record, err := s.Records.GetByPNR(ctx, session.ProviderRefs.PNR)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking for cancellation: %w", err)
	}

	quote := s.cancellationQuote(record)
	session.PendingCancellation = &quote
	session.Stage = models.StageCancelling
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &quote, nil
}

// ConfirmCancellation resolves a pending cancellation. A decline keeps the
// booking and returns to COMPLETED. A provider failure also returns to
// COMPLETED so the user can retry; the booking is never lost to a failed
// cancel call.
func (s *DefaultBookingSessionService) ConfirmCancellation(ctx context.Context, userID string, confirm bool) (*models.CancellationRecord, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageCancelling || session.PendingCancellation == nil {
		return nil, &StateError{Stage: session.Stage, Event: "cancel_confirmed", Expected: "a pending cancellation"}
	}

	if !confirm {
		session.PendingCancellation = nil
		session.Stage = models.StageCompleted
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.cancelBooking(ctx, session); err != nil {
		session.PendingCancellation = nil
		session.Stage = models.StageCompleted
		if saveErr := s.Store.Save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return nil, err
	}

	quote := *session.PendingCancellation
	if err := s.Records.UpdateStatus(ctx, session.ProviderRefs.PNR, models.BookingCancelled); err != nil {
		zap.L().Error("failed to mark booking cancelled",
			zap.String("pnr", session.ProviderRefs.PNR), zap.Error(err))
	}

	record := models.CancellationRecord{
		ID:           uuid.New().String(),
		BookingID:    session.ProviderRefs.BookingID,
		UserID:       userID,
		PNR:          session.ProviderRefs.PNR,
		RefundAmount: quote.RefundAmount,
		Currency:     quote.Currency,
		CancelledAt:  s.now(),
	}
	if _, err := s.Records.SaveCancellation(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation record: %w", err)
	}

	session.PendingCancellation = nil
	session.Stage = models.StageCancelled
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	if err := s.Notifier.DispatchCancellation(ctx, record); err != nil {
		zap.L().Error("failed to dispatch cancellation notification",
			zap.String("pnr", record.PNR), zap.Error(err))
	}
	return &record, nil
}

// Status looks up a persisted booking by PNR.
func (s *DefaultBookingSessionService) Status(ctx context.Context, pnr string) (*models.BookingRecord, error) {
	record, err := s.Records.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", pnr, err)
	}
	return record, nil
}

// CurrentSession returns the caller's live session, if any.
func (s *DefaultBookingSessionService) CurrentSession(ctx context.Context, userID string) (*models.Session, error) {
	s.Locks.Lock(userID)
	defer s.Locks.Unlock(userID)
	return s.loadSession(ctx, userID)
}
