package dispatch

import (
	"context"
	"errors"
	"time"

	bookingRepo "homefix/database/repository/booking"
	"homefix/models"

	"go.uber.org/zap"
)

// Resolver serializes concurrent acceptance attempts against one booking.
// The whole contract hangs on a single compare-and-swap at the storage
// layer: never a read-then-write pair, because accept calls may race from
// different processes.
type Resolver struct {
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

// Accept claims the booking for providerID. Exactly one caller observes
// success for any number of simultaneous attempts; the rest get
// ErrAlreadyTaken and must not retry the same booking.
func (r *Resolver) Accept(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	fields := map[string]any{
		fieldProviderID: providerID,
		fieldAssignedAt: time.Now().UTC(),
	}
	swapped, err := r.Repo.ConditionalUpdate(ctx, bookingID, models.StatusSearching, models.StatusAssigned, fields)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Distinguish a lost race from an unknown booking.
		if _, err := r.Repo.GetByID(ctx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrAlreadyTaken
	}

	booking, err := r.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("booking assigned",
		zap.String("bookingID", bookingID),
		zap.String("providerID", providerID),
	)
	return booking, nil
}
