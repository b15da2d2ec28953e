package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"flybot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create stores a confirmed booking and returns its ID. Records already
// stored for the same main dialog run are not duplicated.
func (r *mongoBookingRepo) Create(ctx context.Context, record models.BookingRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.Status == "" {
		record.Status = "Confirmed"
	}

	if record.MainDialogUUID == "" {
		if _, err := r.coll.InsertOne(ctx, record); err != nil {
			return "", fmt.Errorf("insert booking: %w", err)
		}
		return record.ID, nil
	}

	// Task retries land on the same main dialog run.
	filter := bson.M{"main_dialog_uuid": record.MainDialogUUID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.BookingRecord
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": record}, opts).Decode(&stored)
	if err != nil {
		return "", fmt.Errorf("upsert booking: %w", err)
	}
	return stored.ID, nil
}
