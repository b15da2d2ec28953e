package telemetryRepo

import (
	"context"
	"fmt"

	"flybot/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTelemetryRepo appends telemetry items to the "telemetry" collection.
type MongoTelemetryRepo struct {
	coll *mongo.Collection
}

func NewMongoTelemetryRepo(db *mongo.Database) *MongoTelemetryRepo {
	return &MongoTelemetryRepo{coll: db.Collection("telemetry")}
}

// InsertMany writes a batch without stopping at the first failed document.
func (r *MongoTelemetryRepo) InsertMany(ctx context.Context, items []models.TelemetryItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert telemetry: %w", err)
	}
	return nil
}
