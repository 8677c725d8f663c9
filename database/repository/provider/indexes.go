package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ensureIndexes creates the geo and availability indexes the locator needs.
func (r *MongoProviderLocator) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	geoIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "locationGeo", Value: "2dsphere"}},
	}
	availabilityIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "available", Value: 1}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{geoIdx, availabilityIdx}); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}
