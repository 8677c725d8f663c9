package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	bookingRepo "homefix/database/repository/booking"
	"homefix/models"
	"homefix/services/notification"

	"go.uber.org/zap"
)

// memBookingRepo is an in-memory BookingRepository with the same
// conditional-update contract as the Mongo implementation: the swap is atomic
// under the repo mutex, so concurrent callers observe exactly one success.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) ConditionalUpdate(ctx context.Context, id string, expected, next models.BookingStatus, fields map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != expected {
		return false, nil
	}
	b.Status = next
	for name, value := range fields {
		applyField(b, name, value)
	}
	return true, nil
}

func (r *memBookingRepo) FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) UpdateProviderLocation(ctx context.Context, id string, loc models.GeoPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ProviderLocation = &loc
	return nil
}

// applyField mirrors the $set/$unset behavior of the Mongo repo for the
// fields the engine writes.
func applyField(b *models.Booking, name string, value any) {
	switch name {
	case "provider_id":
		b.ProviderID = value.(string)
	case "worker_id":
		b.WorkerID = value.(string)
	case "assigned_at":
		t := value.(time.Time)
		b.AssignedAt = &t
	case "journey_started_at":
		t := value.(time.Time)
		b.JourneyStartedAt = &t
	case "visited_at":
		t := value.(time.Time)
		b.VisitedAt = &t
	case "work_done_at":
		t := value.(time.Time)
		b.WorkDoneAt = &t
	case "completed_at":
		t := value.(time.Time)
		b.CompletedAt = &t
	case "cancelled_at":
		t := value.(time.Time)
		b.CancelledAt = &t
	case "cancel_reason":
		b.CancelReason = value.(string)
	case "cancelled_by":
		b.CancelledBy = value.(models.CancelActor)
	case "cancellation_fee":
		b.CancellationFee = value.(float64)
	case "stage_code":
		if value == nil {
			b.StageCode = ""
		} else {
			b.StageCode = value.(string)
		}
	}
}

// memLocator serves a fixed provider set. Distance filtering works off the
// pre-computed DistanceMeters on each ref.
type memLocator struct {
	mu        sync.Mutex
	providers []models.ProviderRef
	err       error
}

func (l *memLocator) FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, excludeIDs []string) ([]models.ProviderRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []models.ProviderRef
	for _, p := range l.providers {
		if !p.Available || excluded[p.ID] {
			continue
		}
		if p.DistanceMeters <= radiusKm*1000 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (l *memLocator) MarkAvailability(ctx context.Context, providerID string, available bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.providers {
		if l.providers[i].ID == providerID {
			l.providers[i].Available = available
			return nil
		}
	}
	return nil
}

func (l *memLocator) available(providerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.providers {
		if p.ID == providerID {
			return p.Available
		}
	}
	return false
}

// recordSink captures every alert for assertions.
type recordSink struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

type recordedAlert struct {
	ProviderID string
	Wave       int
	RadiusKm   float64
}

func (s *recordSink) Alert(ctx context.Context, provider models.ProviderRef, alert notification.BookingAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, recordedAlert{
		ProviderID: provider.ID,
		Wave:       alert.Wave,
		RadiusKm:   alert.RadiusKm,
	})
	return nil
}

func (s *recordSink) forProvider(providerID string) []recordedAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recordedAlert
	for _, a := range s.alerts {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func seedBooking(t *testing.T, repo *memBookingRepo, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:            "bk-" + string(status),
		BookingNumber: "HF-TEST0001",
		UserID:        "user-1",
		ServiceType:   "plumbing",
		Status:        status,
		Destination:   models.NewGeoPoint(36.8219, -1.2921),
		CreatedAt:     time.Now().UTC(),
		BasePrice:     1000,
		Tax:           160,
		FinalAmount:   1160,
	}
	if err := repo.Create(context.Background(), booking); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return booking
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", d)
}
