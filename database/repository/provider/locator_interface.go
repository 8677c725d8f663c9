package providerRepo

import (
	"context"

	"homefix/models"
)

// ProviderLocator finds available providers near a destination.
type ProviderLocator interface {
	// FindNearby returns available providers within radiusKm of location,
	// excluding the given ids. No ordering is guaranteed beyond "within
	// radius"; callers must not rely on it.
	FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, excludeIDs []string) ([]models.ProviderRef, error)

	// MarkAvailability flips the availability flag, e.g. off when a provider
	// wins a booking and on again when the job reaches a terminal state.
	MarkAvailability(ctx context.Context, providerID string, available bool) error
}
