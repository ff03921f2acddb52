package bookingRepo

import (
	"context"

	"skybook/database"
	"skybook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRecordRepository stores finalized bookings and their cancellations.
type BookingRecordRepository interface {
	Create(ctx context.Context, record models.BookingRecord) (string, error)
	GetByPNR(ctx context.Context, pnr string) (*models.BookingRecord, error)
	GetByUserID(ctx context.Context, userID string) ([]models.BookingRecord, error)
	UpdateStatus(ctx context.Context, pnr string, status models.BookingStatus) error
	SaveCancellation(ctx context.Context, record models.CancellationRecord) (string, error)
}

type mongoBookingRepo struct {
	bookings      *mongo.Collection
	cancellations *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRecordRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRecordRepository {
	db := database.DB()
	return &mongoBookingRepo{
		bookings:      db.Collection("bookings"),
		cancellations: db.Collection("cancellations"),
	}
}
