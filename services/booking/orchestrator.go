package booking

import (
	"context"
	"errors"
	"fmt"

	"skybook/models"
	"skybook/services/farecache"
	"skybook/services/provider"

	"go.uber.org/zap"
)

// call runs one provider operation under the retry policy and, when
// configured, the circuit breaker.
func (s *DefaultBookingSessionService) call(ctx context.Context, op string, fn func() error) error {
	return s.Retry.Do(ctx, op, func() error {
		if s.Breaker == nil {
			return fn()
		}
		return s.Breaker.Execute(fn)
	})
}

// searchOffers returns the ranked offers for the given params, reusing the
// fare cache when a live entry exists for the same fingerprint.
func (s *DefaultBookingSessionService) searchOffers(ctx context.Context, params models.SearchParams) (string, []models.Offer, error) {
	fingerprint := farecache.Fingerprint(params)

	entry, err := s.Cache.Get(ctx, fingerprint)
	if err == nil {
		zap.L().Debug("fare cache hit", zap.String("fingerprint", fingerprint))
		return entry.TraceID, entry.Offers, nil
	}
	if !errors.Is(err, farecache.ErrMiss) {
		return "", nil, fmt.Errorf("failed to read fare cache: %w", err)
	}

	var result *provider.SearchResult
	err = s.call(ctx, "search", func() error {
		var callErr error
		result, callErr = s.Provider.Search(ctx, params)
		return callErr
	})
	if err != nil {
		return "", nil, err
	}

	if err := s.Cache.Put(ctx, fingerprint, result.Offers, result.TraceID); err != nil {
		// A failed cache write costs a duplicate search later, nothing more.
		zap.L().Warn("failed to cache search results", zap.Error(err))
	}
	return result.TraceID, result.Offers, nil
}

// quoteFare re-verifies the selected offer's price with the provider.
func (s *DefaultBookingSessionService) quoteFare(ctx context.Context, ref models.OfferRef) (*models.FareQuote, error) {
	var quote *models.FareQuote
	err := s.call(ctx, "fareQuote", func() error {
		var callErr error
		quote, callErr = s.Provider.FareQuote(ctx, ref.TraceID, ref.ResultIndex)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// fetchCatalog loads the SSR options for the selected offer.
func (s *DefaultBookingSessionService) fetchCatalog(ctx context.Context, session *models.Session) (*models.ServiceCatalog, error) {
	traceID := session.QuoteTraceID
	if traceID == "" {
		traceID = session.SelectedOffer.TraceID
	}
	var catalog *models.ServiceCatalog
	err := s.call(ctx, "serviceCatalog", func() error {
		var callErr error
		catalog, callErr = s.Provider.ServiceCatalog(ctx, traceID, session.SelectedOffer.ResultIndex)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// executeBooking runs the carrier-appropriate call sequence for a session in
// BOOKING (or resumed in TICKETING). The branch was fixed at selection time
// and is never re-evaluated here.
func (s *DefaultBookingSessionService) executeBooking(ctx context.Context, session *models.Session) error {
	traceID := session.QuoteTraceID
	if traceID == "" {
		traceID = session.SelectedOffer.TraceID
	}
	req := provider.BookingRequest{
		TraceID:        traceID,
		ResultIndex:    session.SelectedOffer.ResultIndex,
		Passengers:     session.Passengers,
		Services:       session.Services,
		IdempotencyKey: session.IdempotencyKey,
	}

	if session.IsLCC {
		// LCC: booking and ticketing are one atomic provider call.
		var result *provider.TicketResult
		err := s.call(ctx, "ticketDirect", func() error {
			var callErr error
			result, callErr = s.Provider.TicketDirect(ctx, req)
			return callErr
		})
		if err != nil {
			s.failSession(ctx, session, ReasonBookingFailed)
			return err
		}
		assignRefs(&session.ProviderRefs, result.BookingID, result.PNR, result.TicketNumber)
		session.Stage = models.StageCompleted
		return nil
	}

	// Non-LCC: hold the fare, then issue the ticket as a separate call.
	if session.ProviderRefs.PNR == "" {
		var booked *provider.BookingResult
		err := s.call(ctx, "book", func() error {
			var callErr error
			booked, callErr = s.Provider.Book(ctx, req)
			return callErr
		})
		if err != nil {
			s.failSession(ctx, session, ReasonBookingFailed)
			return err
		}
		assignRefs(&session.ProviderRefs, booked.BookingID, booked.PNR, "")
		session.Stage = models.StageTicketing
		if err := s.Store.Save(ctx, session); err != nil {
			return err
		}
	}

	var ticketed *provider.TicketResult
	err := s.call(ctx, "ticket", func() error {
		var callErr error
		ticketed, callErr = s.Provider.Ticket(ctx, provider.TicketRequest{
			BookingID:      session.ProviderRefs.BookingID,
			PNR:            session.ProviderRefs.PNR,
			IdempotencyKey: session.IdempotencyKey,
		})
		return callErr
	})
	if err != nil {
		// A PNR exists but no ticket was issued: flag for manual
		// reconciliation instead of silent retry.
		session.BookingExists = true
		s.failSession(ctx, session, ReasonTicketFailed)
		return err
	}
	assignRefs(&session.ProviderRefs, "", "", ticketed.TicketNumber)
	session.Stage = models.StageCompleted
	return nil
}

// cancelBooking voids the ticketed booking with the provider.
func (s *DefaultBookingSessionService) cancelBooking(ctx context.Context, session *models.Session) error {
	return s.call(ctx, "cancel", func() error {
		return s.Provider.Cancel(ctx, provider.CancelRequest{
			BookingID: session.ProviderRefs.BookingID,
			PNR:       session.ProviderRefs.PNR,
		})
	})
}

// assignRefs fills provider references that are still empty. Refs are
// append-only: an assigned value is never overwritten.
func assignRefs(refs *models.ProviderRefs, bookingID, pnr, ticketNumber string) {
	if refs.BookingID == "" && bookingID != "" {
		refs.BookingID = bookingID
	}
	if refs.PNR == "" && pnr != "" {
		refs.PNR = pnr
	}
	if refs.TicketNumber == "" && ticketNumber != "" {
		refs.TicketNumber = ticketNumber
	}
}

// failSession moves the session to the terminal FAILED state with a reason
// code and persists it. Fatal paths always leave an inspectable session
// behind.
func (s *DefaultBookingSessionService) failSession(ctx context.Context, session *models.Session, reason string) {
	session.Stage = models.StageFailed
	session.FailureReason = reason
	if err := s.Store.Save(ctx, session); err != nil {
		zap.L().Error("failed to persist failed session",
			zap.String("userId", session.UserID),
			zap.String("reason", reason),
			zap.Error(err))
	}
}
