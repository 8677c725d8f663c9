package providerRepo

import (
	"context"
	"fmt"
	"time"

	"homefix/database"
	"homefix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderLocator implements ProviderLocator using MongoDB.
type MongoProviderLocator struct {
	coll *mongo.Collection
}

// NewMongoProviderLocator creates a new ProviderLocator backed by MongoDB.
func NewMongoProviderLocator() ProviderLocator {
	coll := database.MongoClient.Database("homefix").Collection("providers")
	locator := &MongoProviderLocator{coll: coll}
	if err := locator.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("provider locator: failed to ensure indexes: %v", err))
	}
	return locator
}

func (r *MongoProviderLocator) FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, excludeIDs []string) ([]models.ProviderRef, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var pipeline mongo.Pipeline

	// $geoNear must come first to filter and sort by distance.
	pipeline = append(pipeline, bson.D{
		{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: location.Coordinates},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: radiusKm * 1000},
		}},
	})

	matchFilter := bson.M{"available": true}
	if len(excludeIDs) > 0 {
		matchFilter["id"] = bson.M{"$nin": excludeIDs}
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})

	cursor, err := r.coll.Aggregate(cctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("nearby provider query failed: %w", err)
	}
	defer cursor.Close(cctx)

	var providers []models.ProviderRef
	if err := cursor.All(cctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderLocator) MarkAvailability(ctx context.Context, providerID string, available bool) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": providerID}
	update := bson.M{"$set": bson.M{"available": available}}
	result, err := r.coll.UpdateOne(cctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update availability for provider %s: %w", providerID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("provider with id %s not found", providerID)
	}
	return nil
}
