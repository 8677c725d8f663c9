package notification

import (
	"context"

	"homefix/models"
)

// BookingAlert is the summary pushed to a provider when a dispatch wave
// reaches them.
type BookingAlert struct {
	BookingID     string          `json:"bookingId"`
	BookingNumber string          `json:"bookingNumber"`
	ServiceType   string          `json:"serviceType"`
	Destination   models.GeoPoint `json:"destination"`
	Wave          int             `json:"wave"`
	RadiusKm      float64         `json:"radiusKm"`
}

// Sink delivers best-effort alerts to providers. Implementations must never
// block a dispatch wave on delivery: failures are returned for logging only.
type Sink interface {
	Alert(ctx context.Context, provider models.ProviderRef, alert BookingAlert) error
}
