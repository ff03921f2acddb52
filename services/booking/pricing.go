package booking

import (
	"skybook/models"

	"github.com/google/uuid"
)

// cancellationQuote prices a cancellation: the refund is what was paid minus
// the flat cancellation charge, never negative.
func (s *DefaultBookingSessionService) cancellationQuote(record *models.BookingRecord) models.CancellationQuote {
	refund := record.FareTotal - s.Policy.CancellationFee
	if refund < 0 {
		refund = 0
	}
	return models.CancellationQuote{
		PNR:                record.PNR,
		PaidTotal:          record.FareTotal,
		CancellationCharge: s.Policy.CancellationFee,
		RefundAmount:       refund,
		Currency:           record.Currency,
	}
}

// buildRecord assembles the durable booking record from a completed session.
// The record ID is the attempt's idempotency key so a replayed confirmation
// produces the same record, not a second one.
func (s *DefaultBookingSessionService) buildRecord(session *models.Session) models.BookingRecord {
	id := session.IdempotencyKey
	if id == "" {
		id = uuid.New().String()
	}
	record := models.BookingRecord{
		ID:           id,
		UserID:       session.UserID,
		PNR:          session.ProviderRefs.PNR,
		BookingID:    session.ProviderRefs.BookingID,
		TicketNumber: session.ProviderRefs.TicketNumber,
		Origin:       session.SearchParams.Origin,
		Destination:  session.SearchParams.Destination,
		Date:         session.SearchParams.Date,
		Passengers:   session.Passengers,
		Services:     session.Services,
		FareTotal:    session.PriceSnapshot.Total,
		Currency:     session.PriceSnapshot.Currency,
		Status:       models.BookingConfirmed,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if flight := session.SelectedFlight; flight != nil {
		record.Airline = flight.Airline
		record.FlightNumber = flight.FlightNumber
		record.Departure = flight.Departure
		record.Arrival = flight.Arrival
	}
	return record
}
