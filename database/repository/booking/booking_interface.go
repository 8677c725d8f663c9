package bookingRepo

import (
	"context"

	"homefix/models"
)

// BookingRepository defines data access for booking records.
//
// ConditionalUpdate is the one atomicity primitive the dispatch engine relies
// on: it sets the status (plus any extra fields) only if the stored status
// still equals expected, as a single indivisible storage operation. Concurrent
// callers racing on the same booking observe exactly one success.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ConditionalUpdate(ctx context.Context, id string, expected, next models.BookingStatus, fields map[string]any) (bool, error)
	FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	UpdateProviderLocation(ctx context.Context, id string, loc models.GeoPoint) error
}
