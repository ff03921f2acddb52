package notification

import (
	"context"
	"fmt"

	"skybook/models"
	"skybook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueDispatcher enqueues records for the background delivery worker.
type QueueDispatcher struct {
	client *asynq.Client
}

func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (d *QueueDispatcher) DispatchBooking(ctx context.Context, record models.BookingRecord) error {
	task, err := tasks.NewBookingNotificationTask(record)
	if err != nil {
		return fmt.Errorf("failed to build booking notification task: %w", err)
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue booking notification: %w", err)
	}
	return nil
}

func (d *QueueDispatcher) DispatchCancellation(ctx context.Context, record models.CancellationRecord) error {
	task, err := tasks.NewCancellationNotificationTask(record)
	if err != nil {
		return fmt.Errorf("failed to build cancellation notification task: %w", err)
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue cancellation notification: %w", err)
	}
	return nil
}

// LogDispatcher records the handoff without delivering anywhere. Used in
// development and tests.
type LogDispatcher struct{}

func (LogDispatcher) DispatchBooking(ctx context.Context, record models.BookingRecord) error {
	zap.L().Info("booking record dispatched",
		zap.String("pnr", record.PNR),
		zap.String("userId", record.UserID),
		zap.Float64("total", record.FareTotal))
	return nil
}

func (LogDispatcher) DispatchCancellation(ctx context.Context, record models.CancellationRecord) error {
	zap.L().Info("cancellation record dispatched",
		zap.String("pnr", record.PNR),
		zap.String("userId", record.UserID),
		zap.Float64("refund", record.RefundAmount))
	return nil
}
