package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homefix/database"
	"homefix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// ErrNotFound is returned when no booking matches the given id.
var ErrNotFound = errors.New("booking not found")

// NewMongoBookingRepo creates a new BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database("homefix").Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("booking repo: failed to ensure indexes: %v", err))
	}
	return repo
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(cctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking %s: %w", booking.ID, err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(cctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// ConditionalUpdate performs a compare-and-swap on the status field. The
// filter matches on both id and the expected status, so the write succeeds
// for exactly one of any number of concurrent callers. MatchedCount tells us
// whether this caller won.
func (r *MongoBookingRepo) ConditionalUpdate(ctx context.Context, id string, expected, next models.BookingStatus, fields map[string]any) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": next}
	unset := bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"id": id, "status": expected}
	result, err := r.coll.UpdateOne(cctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("conditional update for booking %s (%s -> %s) failed: %w", id, expected, next, err)
	}
	return result.MatchedCount == 1, nil
}

func (r *MongoBookingRepo) FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(cctx, bson.M{"status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by status %s: %w", status, err)
	}
	defer cursor.Close(cctx)

	var bookings []models.Booking
	if err := cursor.All(cctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// UpdateProviderLocation writes the live provider position. It deliberately
// does not condition on status: position updates and lifecycle transitions
// are independent writes.
func (r *MongoBookingRepo) UpdateProviderLocation(ctx context.Context, id string, loc models.GeoPoint) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"provider_location": loc}}
	result, err := r.coll.UpdateOne(cctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update provider location for booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
