// Package agent is the conversation engine: it turns inbound chat messages
// into booking-session events and assembles the ordered replies.
package agent

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"skybook/models"
	"skybook/services/booking"
	"skybook/services/intelligence"
	"skybook/services/normalizer"

	"go.uber.org/zap"
)

// ContextStore feeds prior conversation turns to the extractor.
type ContextStore interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Append(ctx context.Context, userID, turn string) error
}

// Agent processes one inbound message at a time per user; ordering and
// mutual exclusion are enforced underneath by the booking service.
type Agent struct {
	Extractor intelligence.Extractor
	Context   ContextStore
	Booking   booking.BookingSessionService
	AgePolicy normalizer.AgePolicy
}

// ProcessMessage handles one inbound message and returns the replies to send
// back through the channel, in order.
func (a *Agent) ProcessMessage(ctx context.Context, msg models.InboundMessage) ([]models.OutboundMessage, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return a.reply(msg.UserID, "I didn't catch that. Tell me where you'd like to fly, e.g. \"book a flight from Delhi to Mumbai tomorrow\"."), nil
	}

	if a.Context != nil {
		if err := a.Context.Append(ctx, msg.UserID, "User: "+text); err != nil {
			zap.L().Warn("failed to append conversation context", zap.Error(err))
		}
	}

	session, err := a.Booking.CurrentSession(ctx, msg.UserID)
	switch {
	case errors.Is(err, booking.ErrSessionExpired):
		out := a.reply(msg.UserID, "Your previous booking session expired, so let's start fresh.")
		more, err := a.handleIntent(ctx, msg, nil)
		return append(out, more...), err
	case errors.Is(err, booking.ErrSessionNotFound):
		session = nil
	case err != nil:
		return nil, err
	}

	// Mid-flow stages expect structured input and are handled without the
	// extractor; free-form stages go through intent extraction.
	if session != nil {
		switch session.Stage {
		case models.StageShowingResults:
			// A number picks a flight; anything else may be a fresh search,
			// which this stage accepts. Expired results in particular are
			// only recoverable by searching again.
			if _, err := strconv.Atoi(text); err == nil {
				return a.handleSelection(ctx, msg, text)
			}
		case models.StageFlightSelected:
			if session.PendingPriceChange != nil {
				return a.handlePriceAck(ctx, msg, text)
			}
		case models.StageAddingServices:
			return a.handleServices(ctx, msg, text)
		case models.StageCollectingPassenger:
			return a.handlePassenger(ctx, msg, session, text)
		case models.StageConfirmingDetails:
			return a.handleConfirmation(ctx, msg, text)
		case models.StageCancelling:
			return a.handleCancelConfirmation(ctx, msg, text)
		}
	}

	return a.handleIntent(ctx, msg, session)
}

func (a *Agent) handleIntent(ctx context.Context, msg models.InboundMessage, session *models.Session) ([]models.OutboundMessage, error) {
	var history []string
	if a.Context != nil {
		if h, err := a.Context.Get(ctx, msg.UserID); err == nil {
			history = h
		}
	}
	extraction, err := a.Extractor.Extract(ctx, msg.Text, history)
	if err != nil {
		zap.L().Error("entity extraction failed", zap.Error(err))
		return a.reply(msg.UserID, "Sorry, I couldn't understand that. Could you rephrase?"), nil
	}

	switch extraction.Intent {
	case intelligence.IntentBookFlight:
		return a.handleSearch(ctx, msg, *extraction)
	case intelligence.IntentCheckStatus:
		return a.handleStatus(ctx, msg, extraction.PNR)
	case intelligence.IntentCancel:
		return a.handleCancelRequest(ctx, msg, extraction.PNR)
	default:
		if session != nil && session.Stage == models.StageShowingResults {
			return a.reply(msg.UserID, "Reply with the number of the flight you'd like, or search again with a new route or date."), nil
		}
		return a.reply(msg.UserID, "I can book flights, check a booking status, or cancel a booking. Where would you like to fly?"), nil
	}
}

func (a *Agent) handleSearch(ctx context.Context, msg models.InboundMessage, extraction models.Extraction) ([]models.OutboundMessage, error) {
	normalized, err := normalizer.NormalizeSearch(extraction, msg.Timestamp)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}

	out := a.reply(msg.UserID, "Searching flights from "+normalized.Params.Origin+" to "+normalized.Params.Destination+" on "+normalized.Params.Date+"...")
	_, offers, err := a.Booking.StartSearch(ctx, msg.UserID, normalized.Params)
	if err != nil {
		return append(out, a.reply(msg.UserID, userFacing(err))...), nil
	}
	return append(out, models.OutboundMessage{
		UserID:     msg.UserID,
		Text:       formatOffers(offers),
		Attachment: offers,
	}), nil
}

func (a *Agent) handleSelection(ctx context.Context, msg models.InboundMessage, text string) ([]models.OutboundMessage, error) {
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return a.reply(msg.UserID, "Reply with the number of the flight you'd like, e.g. \"1\"."), nil
	}

	session, offer, err := a.Booking.SelectOffer(ctx, msg.UserID, index-1)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}

	out := a.reply(msg.UserID, formatSelection(*offer))

	// Fare re-verification follows selection immediately.
	session, fare, err := a.Booking.ConfirmFare(ctx, msg.UserID)
	if err != nil {
		return append(out, a.reply(msg.UserID, userFacing(err))...), nil
	}
	if fare.PriceIncreased != nil {
		return append(out, a.reply(msg.UserID, formatPriceIncrease(*fare.PriceIncreased))...), nil
	}
	return append(out, a.reply(msg.UserID, formatServicesPrompt(session))...), nil
}

func (a *Agent) handlePriceAck(ctx context.Context, msg models.InboundMessage, text string) ([]models.OutboundMessage, error) {
	answer, ok := parseYesNo(text)
	if !ok {
		return a.reply(msg.UserID, "The fare changed - reply YES to continue at the new price, or NO to go back to the results."), nil
	}
	session, err := a.Booking.AcknowledgePriceChange(ctx, msg.UserID, answer)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}
	if answer {
		return a.reply(msg.UserID, formatServicesPrompt(session)), nil
	}
	return a.reply(msg.UserID, "No problem. Reply with another flight number from the results, or search again."), nil
}

func (a *Agent) handleServices(ctx context.Context, msg models.InboundMessage, text string) ([]models.OutboundMessage, error) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if lower == "show" || lower == "options" {
		catalog, err := a.Booking.ServiceCatalog(ctx, msg.UserID)
		if err != nil {
			return a.reply(msg.UserID, userFacing(err)), nil
		}
		return a.reply(msg.UserID, formatCatalog(*catalog)), nil
	}

	var selections []models.ServiceSelection
	if lower != "skip" && lower != "none" {
		catalog, err := a.Booking.ServiceCatalog(ctx, msg.UserID)
		if err != nil {
			return a.reply(msg.UserID, userFacing(err)), nil
		}
		selections = matchSelections(*catalog, text)
		if len(selections) == 0 {
			return a.reply(msg.UserID, "I couldn't match those to available services. Reply \"show\" to list the options, or \"skip\"."), nil
		}
	}

	session, err := a.Booking.AddServices(ctx, msg.UserID, selections)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}
	return a.reply(msg.UserID, formatPassengerPrompt(session)), nil
}

func (a *Agent) handlePassenger(ctx context.Context, msg models.InboundMessage, session *models.Session, text string) ([]models.OutboundMessage, error) {
	lead := len(session.Passengers) == 0
	parsed := normalizer.ParsePassenger(text, lead, msg.Timestamp, a.AgePolicy)
	if !parsed.Valid() {
		return a.reply(msg.UserID, formatFieldErrors(parsed.FieldErrors)), nil
	}

	session, progress, err := a.Booking.AddPassenger(ctx, msg.UserID, parsed.Passenger)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}
	if !progress.Complete() {
		return a.reply(msg.UserID, formatNextPassengerPrompt(progress)), nil
	}
	return a.reply(msg.UserID, formatSummary(session)), nil
}

func (a *Agent) handleConfirmation(ctx context.Context, msg models.InboundMessage, text string) ([]models.OutboundMessage, error) {
	answer, ok := parseYesNo(text)
	if !ok {
		return a.reply(msg.UserID, "Reply YES to confirm the booking or NO to revise the details."), nil
	}
	if !answer {
		if _, _, err := a.Booking.Confirm(ctx, msg.UserID, false); err != nil {
			return a.reply(msg.UserID, userFacing(err)), nil
		}
		return a.reply(msg.UserID, "Okay, let's re-enter the passenger details. Send the lead passenger again (Name, DOB, Gender, Phone, Email)."), nil
	}

	out := a.reply(msg.UserID, "Processing your booking...")
	_, record, err := a.Booking.Confirm(ctx, msg.UserID, true)
	if err != nil {
		return append(out, a.reply(msg.UserID, userFacing(err))...), nil
	}
	return append(out, models.OutboundMessage{
		UserID:     msg.UserID,
		Text:       formatBookingSuccess(*record),
		Attachment: record,
	}), nil
}

func (a *Agent) handleStatus(ctx context.Context, msg models.InboundMessage, pnr string) ([]models.OutboundMessage, error) {
	if pnr == "" {
		return a.reply(msg.UserID, "Which booking? Send me the PNR, e.g. \"check my booking ABC123\"."), nil
	}
	record, err := a.Booking.Status(ctx, pnr)
	if err != nil {
		return a.reply(msg.UserID, "I couldn't find a booking with PNR "+pnr+"."), nil
	}
	return a.reply(msg.UserID, formatStatus(*record)), nil
}

func (a *Agent) handleCancelRequest(ctx context.Context, msg models.InboundMessage, pnr string) ([]models.OutboundMessage, error) {
	quote, err := a.Booking.RequestCancellation(ctx, msg.UserID, pnr)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}
	return a.reply(msg.UserID, formatCancellationQuote(*quote)), nil
}

func (a *Agent) handleCancelConfirmation(ctx context.Context, msg models.InboundMessage, text string) ([]models.OutboundMessage, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	var confirm bool
	switch lower {
	case "confirm", "yes", "y":
		confirm = true
	case "cancel", "no", "n", "keep":
		confirm = false
	default:
		return a.reply(msg.UserID, "Reply CONFIRM to cancel the booking, or KEEP to keep it."), nil
	}

	record, err := a.Booking.ConfirmCancellation(ctx, msg.UserID, confirm)
	if err != nil {
		return a.reply(msg.UserID, userFacing(err)), nil
	}
	if !confirm {
		return a.reply(msg.UserID, "Your booking is unchanged."), nil
	}
	return a.reply(msg.UserID, formatCancellationSuccess(*record)), nil
}

func (a *Agent) reply(userID, text string) []models.OutboundMessage {
	if a.Context != nil {
		// Best effort; context loss only degrades extraction quality.
		_ = a.Context.Append(context.Background(), userID, "Assistant: "+text)
	}
	return []models.OutboundMessage{{UserID: userID, Text: text}}
}

func parseYesNo(text string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "confirm", "ok", "okay", "sure":
		return true, true
	case "no", "n", "change", "revise":
		return false, true
	}
	return false, false
}

// matchSelections resolves user text against the catalog by option code or a
// word from the description, case-insensitively.
func matchSelections(catalog models.ServiceCatalog, text string) []models.ServiceSelection {
	lower := strings.ToLower(text)
	var selections []models.ServiceSelection
	all := make([]models.ServiceOption, 0, len(catalog.Meals)+len(catalog.Seats)+len(catalog.Baggage))
	all = append(all, catalog.Meals...)
	all = append(all, catalog.Seats...)
	all = append(all, catalog.Baggage...)

	for _, opt := range all {
		if strings.Contains(lower, strings.ToLower(opt.Code)) ||
			strings.Contains(lower, strings.ToLower(opt.Description)) {
			selections = append(selections, models.ServiceSelection{
				Code:        opt.Code,
				Kind:        opt.Kind,
				Description: opt.Description,
				Price:       opt.Price,
			})
		}
	}
	return selections
}
