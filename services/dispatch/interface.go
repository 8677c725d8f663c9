package dispatch

import (
	"context"

	"homefix/models"
)

// CreateBookingInput carries what the booking-creation flow knows when it
// hands a request to the engine.
type CreateBookingInput struct {
	UserID      string
	ServiceType string
	Destination models.GeoPoint

	BasePrice   float64
	Discount    float64
	Tax         float64
	VisitingFee float64
}

// DispatchAPI is consumed by the booking-creation flow.
type DispatchAPI interface {
	// CreateBooking persists a new REQUESTED booking and starts its
	// dispatch run.
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	// RegisterBooking (re-)starts the dispatch run for an existing booking.
	// Idempotent: a booking already under dispatch is a no-op.
	RegisterBooking(ctx context.Context, bookingID string) error
}

// ProviderResponseAPI is consumed by provider clients.
type ProviderResponseAPI interface {
	// Accept claims the booking; exactly one concurrent caller wins.
	Accept(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	// Decline passes on an alert, or backs out of a won booking.
	Decline(ctx context.Context, bookingID, providerID string) error
	// UpdateLiveLocation streams the assigned provider's position.
	UpdateLiveLocation(ctx context.Context, bookingID string, loc models.GeoPoint) error
}

// LifecycleAPI advances and cancels bookings after assignment.
type LifecycleAPI interface {
	Advance(ctx context.Context, bookingID string, target models.BookingStatus, actor string, code string) (*AdvanceResult, error)
	Cancel(ctx context.Context, bookingID string, actor models.CancelActor, reason string) (float64, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// Service is the full engine surface the HTTP edge wires up.
type Service interface {
	DispatchAPI
	ProviderResponseAPI
	LifecycleAPI
}
