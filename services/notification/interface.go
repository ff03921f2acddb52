// Package notification hands finalized booking and cancellation records to
// the delivery side (email, SMS, chat). The core's obligation ends at the
// handoff.
package notification

import (
	"context"

	"skybook/models"
)

// Dispatcher accepts complete, validated records for delivery.
type Dispatcher interface {
	DispatchBooking(ctx context.Context, record models.BookingRecord) error
	DispatchCancellation(ctx context.Context, record models.CancellationRecord) error
}
