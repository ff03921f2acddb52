package bookingRepo

import (
	"context"
	"errors"
	"time"

	"skybook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create stores a booking record, upserting on PNR so a replayed
// confirmation overwrites its earlier write instead of duplicating it.
func (r *mongoBookingRepo) Create(ctx context.Context, record models.BookingRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.bookings.ReplaceOne(ctx, bson.M{"pnr": record.PNR}, record, opts)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByPNR returns a booking record by its PNR.
func (r *mongoBookingRepo) GetByPNR(ctx context.Context, pnr string) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.bookings.FindOne(ctx, bson.M{"pnr": pnr}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByUserID fetches all bookings made by a specific user.
func (r *mongoBookingRepo) GetByUserID(ctx context.Context, userID string) ([]models.BookingRecord, error) {
	cursor, err := r.bookings.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus sets the status of the booking with the given PNR.
func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, pnr string, status models.BookingStatus) error {
	res, err := r.bookings.UpdateOne(ctx,
		bson.M{"pnr": pnr},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("booking not found")
	}
	return nil
}

// SaveCancellation inserts a cancellation record and returns its ID.
func (r *mongoBookingRepo) SaveCancellation(ctx context.Context, record models.CancellationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CancelledAt = time.Now()

	_, err := r.cancellations.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}
