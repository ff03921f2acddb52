package tasks

import (
	"encoding/json"

	"skybook/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingNotification      = "notification:booking"
	TypeCancellationNotification = "notification:cancellation"
)

func NewBookingNotificationTask(record models.BookingRecord) (*asynq.Task, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotification, b), nil
}

func NewCancellationNotificationTask(record models.CancellationRecord) (*asynq.Task, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCancellationNotification, b), nil
}
