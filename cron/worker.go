package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"skybook/config"
	"skybook/models"
	"skybook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the async delivery worker in the background.
// It drains the notification queue and hands each record to the delivery
// channel; the channel itself (email/SMS/chat transport) sits outside the
// core.
func InitNotificationWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingNotification, handleBookingNotification)
	mux.HandleFunc(tasks.TypeCancellationNotification, handleCancellationNotification)

	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[NotificationWorker] failed to start worker: %v", err)
		}
	}()
}

func handleBookingNotification(ctx context.Context, task *asynq.Task) error {
	var record models.BookingRecord
	if err := json.Unmarshal(task.Payload(), &record); err != nil {
		return fmt.Errorf("invalid booking notification payload: %w", err)
	}
	lead := leadPassenger(record.Passengers)
	zap.L().Info("delivering booking confirmation",
		zap.String("pnr", record.PNR),
		zap.String("ticket", record.TicketNumber),
		zap.String("email", lead.Email),
		zap.String("phone", lead.Phone))
	return nil
}

func handleCancellationNotification(ctx context.Context, task *asynq.Task) error {
	var record models.CancellationRecord
	if err := json.Unmarshal(task.Payload(), &record); err != nil {
		return fmt.Errorf("invalid cancellation notification payload: %w", err)
	}
	zap.L().Info("delivering cancellation confirmation",
		zap.String("pnr", record.PNR),
		zap.Float64("refund", record.RefundAmount))
	return nil
}

func leadPassenger(passengers []models.Passenger) models.Passenger {
	for _, p := range passengers {
		if p.Lead {
			return p
		}
	}
	if len(passengers) > 0 {
		return passengers[0]
	}
	return models.Passenger{}
}
