// Package intelligence wraps the entity extraction service. Its output is a
// best-effort guess over untrusted text; the normalizer re-validates
// everything before the booking flow sees it.
package intelligence

import (
	"context"

	"skybook/models"
)

// Intents the conversation engine dispatches on.
const (
	IntentBookFlight  = "book_flight"
	IntentCheckStatus = "check_status"
	IntentCancel      = "cancel_booking"
	IntentChat        = "chat"
)

// Extractor pulls structured intent and entities out of one message, given
// the recent conversation turns as context.
type Extractor interface {
	Extract(ctx context.Context, text string, history []string) (*models.Extraction, error)
}
