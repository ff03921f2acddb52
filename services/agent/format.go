package agent

import (
	"errors"
	"fmt"
	"strings"

	"skybook/models"
	"skybook/services/booking"
	"skybook/services/normalizer"
	"skybook/services/provider"
)

func formatOffers(offers []models.Offer) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d flights:\n", len(offers)))
	for i, o := range offers {
		b.WriteString(fmt.Sprintf("%d. %s %s  %s-%s  %s -> %s  %s\n",
			i+1, o.Airline, o.FlightNumber, o.Origin, o.Destination,
			o.Departure, o.Arrival, money(o.Total, o.Currency)))
	}
	b.WriteString("\nReply with the flight number to book.")
	return b.String()
}

func formatSelection(o models.Offer) string {
	return fmt.Sprintf("You selected %s %s (%s -> %s, departs %s).\nFare: %s base + %s taxes = %s. Verifying the latest price...",
		o.Airline, o.FlightNumber, o.Origin, o.Destination, o.Departure,
		money(o.BaseFare, o.Currency), money(o.Taxes, o.Currency), money(o.Total, o.Currency))
}

func formatPriceIncrease(change models.PendingPriceChange) string {
	return fmt.Sprintf("Heads up: the fare went up from %.0f to %.0f (+%.0f).\nReply YES to continue at the new price, or NO to pick another flight.",
		change.Old, change.New, change.Diff)
}

func formatServicesPrompt(session *models.Session) string {
	base := fmt.Sprintf("Price confirmed at %s.", money(session.PriceSnapshot.Total, session.PriceSnapshot.Currency))
	if session.IsLCC {
		return base + "\nThis is a low-cost fare with no free baggage, so a baggage add-on is required. Reply \"show\" to see meals, seats and baggage options."
	}
	return base + "\nWould you like to add meals, seats or extra baggage? Reply \"show\" for options, or \"skip\"."
}

func formatCatalog(c models.ServiceCatalog) string {
	var b strings.Builder
	section := func(title string, opts []models.ServiceOption) {
		if len(opts) == 0 {
			return
		}
		b.WriteString(title + ":\n")
		for _, o := range opts {
			b.WriteString(fmt.Sprintf("  %s - %s (%.0f)\n", o.Code, o.Description, o.Price))
		}
	}
	section("Meals", c.Meals)
	section("Seats", c.Seats)
	section("Baggage", c.Baggage)
	b.WriteString("\nReply with the codes you want (e.g. \"VGML, BAG15\"), or \"skip\".")
	return b.String()
}

func formatPassengerPrompt(session *models.Session) string {
	total := money(session.PriceSnapshot.Total, session.PriceSnapshot.Currency)
	return fmt.Sprintf("Total so far: %s.\nNow send the lead passenger's details in one message:\nName, Date of birth (DD-MM-YYYY), Gender, Phone (10 digits), Email", total)
}

func formatNextPassengerPrompt(progress booking.PassengerProgress) string {
	return fmt.Sprintf("Got it, %d of %d passengers done. Send the next passenger:\nName, Date of birth (DD-MM-YYYY), Gender",
		progress.Collected, progress.Required)
}

func formatFieldErrors(errs []*normalizer.FieldValidationError) string {
	var b strings.Builder
	b.WriteString("A few details need fixing:\n")
	for _, e := range errs {
		b.WriteString(fmt.Sprintf("  %s: %s\n", e.Field, e.Reason))
	}
	b.WriteString("Please resend the passenger's details.")
	return b.String()
}

func formatSummary(session *models.Session) string {
	var b strings.Builder
	b.WriteString("Please review your booking:\n")
	if f := session.SelectedFlight; f != nil {
		b.WriteString(fmt.Sprintf("Flight: %s %s  %s -> %s on %s, departs %s\n",
			f.Airline, f.FlightNumber, f.Origin, f.Destination, session.SearchParams.Date, f.Departure))
	}
	b.WriteString("Passengers:\n")
	for _, p := range session.Passengers {
		b.WriteString(fmt.Sprintf("  %s (%s)\n", p.FullName, p.Type))
	}
	if len(session.Services) > 0 {
		b.WriteString("Add-ons:\n")
		for _, s := range session.Services {
			b.WriteString(fmt.Sprintf("  %s (%.0f)\n", s.Description, s.Price))
		}
	}
	b.WriteString(fmt.Sprintf("Total: %s\n", money(session.PriceSnapshot.Total, session.PriceSnapshot.Currency)))
	b.WriteString("\nReply YES to confirm and book, or NO to change the details.")
	return b.String()
}

func formatBookingSuccess(r models.BookingRecord) string {
	var b strings.Builder
	b.WriteString("Your booking is confirmed!\n")
	b.WriteString(fmt.Sprintf("PNR: %s\n", r.PNR))
	if r.TicketNumber != "" {
		b.WriteString(fmt.Sprintf("Ticket: %s\n", r.TicketNumber))
	}
	b.WriteString(fmt.Sprintf("%s %s  %s -> %s on %s, departs %s\n",
		r.Airline, r.FlightNumber, r.Origin, r.Destination, r.Date, r.Departure))
	b.WriteString(fmt.Sprintf("Amount paid: %s\n", money(r.FareTotal, r.Currency)))
	b.WriteString("Save your PNR to check status or cancel later.")
	return b.String()
}

func formatStatus(r models.BookingRecord) string {
	return fmt.Sprintf("Booking %s is %s.\n%s %s  %s -> %s on %s, departs %s\nAmount paid: %s",
		r.PNR, strings.ToLower(string(r.Status)),
		r.Airline, r.FlightNumber, r.Origin, r.Destination, r.Date, r.Departure,
		money(r.FareTotal, r.Currency))
}

func formatCancellationQuote(q models.CancellationQuote) string {
	return fmt.Sprintf("Cancelling booking %s:\nPaid: %s\nCancellation charge: %s\nRefund: %s\n\nReply CONFIRM to cancel, or KEEP to keep the booking.",
		q.PNR, money(q.PaidTotal, q.Currency), money(q.CancellationCharge, q.Currency), money(q.RefundAmount, q.Currency))
}

func formatCancellationSuccess(r models.CancellationRecord) string {
	return fmt.Sprintf("Booking %s has been cancelled. A refund of %s will be processed to your original payment method within 5-7 business days.",
		r.PNR, money(r.RefundAmount, r.Currency))
}

func money(amount float64, currency string) string {
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf("%s %.0f", currency, amount)
}

// userFacing maps internal errors to a reply the user can act on.
func userFacing(err error) string {
	var state *booking.StateError
	if errors.As(err, &state) {
		return "That doesn't fit where we are in the booking. " + resumeHint(state.Stage)
	}

	var flow *booking.FlowError
	if errors.As(err, &flow) {
		switch flow.Code {
		case booking.CodeInvalidSelection:
			return "That flight number isn't in the list. Reply with one of the numbers shown."
		case booking.CodeResultsExpired:
			return "Those results have expired. Please search again."
		case booking.CodeOfferExpired:
			return "That fare is no longer available. Here are the results again; pick another flight or search afresh."
		case booking.CodeMandatorySSRMissing:
			return "Low-cost fares have no free baggage, so please pick a baggage option before continuing. Reply \"show\" to see them."
		case booking.CodePriceChangePending:
			return "The fare changed. Reply YES to accept the new price or NO to go back."
		case booking.CodePassengerLimit:
			return "All passengers are already entered."
		}
		return flow.Message
	}

	var loc *normalizer.UnknownLocationError
	if errors.As(err, &loc) {
		return fmt.Sprintf("I don't recognize %q as a city or airport. Try the city name or IATA code, e.g. \"Delhi\" or \"DEL\".", loc.Name)
	}
	var date *normalizer.InvalidDateError
	if errors.As(err, &date) {
		return fmt.Sprintf("I couldn't use the date %q: %s. Try \"tomorrow\" or DD-MM-YYYY.", date.Raw, date.Reason)
	}
	var field *normalizer.FieldValidationError
	if errors.As(err, &field) {
		return fmt.Sprintf("%s: %s", field.Field, field.Reason)
	}

	var pe *provider.Error
	if errors.As(err, &pe) && pe.Transient {
		return "The airline system is busy right now. Please try again in a moment."
	}

	if errors.Is(err, booking.ErrSessionExpired) {
		return "Your booking session expired. Start a new search when ready."
	}
	if errors.Is(err, booking.ErrSessionNotFound) {
		return "There's no active booking. Tell me where you'd like to fly."
	}

	return "Something went wrong on our side. Please try again."
}

func resumeHint(stage models.Stage) string {
	switch stage {
	case models.StageShowingResults:
		return "Reply with a flight number from the list."
	case models.StageAddingServices:
		return "Reply \"show\" for add-ons or \"skip\"."
	case models.StageCollectingPassenger:
		return "Send the next passenger's details."
	case models.StageConfirmingDetails:
		return "Reply YES to confirm or NO to change details."
	case models.StageCancelling:
		return "Reply CONFIRM to cancel or KEEP to keep the booking."
	case models.StageBooking, models.StageTicketing:
		return "Your booking is being processed; reply YES to retry if it stalled."
	default:
		return "You can start a new search any time."
	}
}
