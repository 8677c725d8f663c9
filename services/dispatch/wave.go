package dispatch

import (
	"context"
	"sync"
	"time"

	bookingRepo "homefix/database/repository/booking"
	providerRepo "homefix/database/repository/provider"
	"homefix/models"
	"homefix/services/notification"

	"go.uber.org/zap"
)

// runState is the ephemeral per-run dispatch metadata: which providers have
// been alerted and which declined. It is owned by the task running the wave
// loop; the API side feeds declines into it. Discarded once the booking
// leaves SEARCHING.
type runState struct {
	mu       sync.Mutex
	alerted  map[string]struct{}
	declined map[string]struct{}
}

func newRunState() *runState {
	return &runState{
		alerted:  make(map[string]struct{}),
		declined: make(map[string]struct{}),
	}
}

// markAlerted records an alert and reports whether the provider was new.
// A provider is never alerted twice within one run.
func (s *runState) markAlerted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.alerted[id]; seen {
		return false
	}
	s.alerted[id] = struct{}{}
	return true
}

// noteDecline excludes the provider from the rest of the run. With
// redispatch enabled the provider becomes eligible for later waves again.
func (s *runState) noteDecline(id string, redispatch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if redispatch {
		delete(s.alerted, id)
		return
	}
	s.declined[id] = struct{}{}
}

// exclusions returns the ids the locator must skip: everyone already alerted
// plus everyone who declined.
func (s *runState) exclusions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.alerted)+len(s.declined))
	for id := range s.alerted {
		ids = append(ids, id)
	}
	for id := range s.declined {
		if _, ok := s.alerted[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Dispatcher runs the expanding-radius alert waves for one booking until a
// provider accepts, the booking is cancelled externally, or the total
// timeout expires.
type Dispatcher struct {
	Repo    bookingRepo.BookingRepository
	Locator providerRepo.ProviderLocator
	Sink    notification.Sink
	Cfg     Config
	Logger  *zap.Logger
}

const (
	adapterRetries      = 3
	adapterRetryBackoff = 500 * time.Millisecond
)

// Run executes the wave loop and returns the status the booking held when
// the run ended. The context cancels the run the instant the booking's
// relevance ends (shutdown, external retire).
func (d *Dispatcher) Run(ctx context.Context, booking models.Booking, state *runState) models.BookingStatus {
	log := d.Logger.With(zap.String("bookingID", booking.ID))

	// Fresh bookings move REQUESTED -> SEARCHING here; recovered bookings
	// are already SEARCHING and the failed swap is expected.
	swapped, err := d.Repo.ConditionalUpdate(ctx, booking.ID, models.StatusRequested, models.StatusSearching, nil)
	if err != nil {
		log.Error("failed to start dispatch", zap.Error(err))
		return booking.Status
	}
	if !swapped {
		status, err := d.currentStatus(ctx, booking.ID)
		if err != nil {
			log.Error("failed to read booking at dispatch start", zap.Error(err))
			return booking.Status
		}
		if status != models.StatusSearching {
			log.Info("dispatch not started, booking no longer dispatchable", zap.String("status", string(status)))
			return status
		}
	}

	deadline := time.Now().Add(d.Cfg.TotalTimeout)

	for wave := 0; ; wave++ {
		radius := d.Cfg.RadiusForWave(wave)

		providers, err := d.findNearbyWithRetry(ctx, booking.Destination, radius, state.exclusions())
		if err != nil {
			// A locator fault never disturbs the wave cadence; late waves
			// retry the same radius anyway.
			log.Error("provider search failed, keeping wave cadence",
				zap.Int("wave", wave), zap.Float64("radiusKm", radius), zap.Error(err))
		}

		fresh := 0
		for _, p := range providers {
			if !state.markAlerted(p.ID) {
				continue
			}
			fresh++
			alert := notification.BookingAlert{
				BookingID:     booking.ID,
				BookingNumber: booking.BookingNumber,
				ServiceType:   booking.ServiceType,
				Destination:   booking.Destination,
				Wave:          wave,
				RadiusKm:      radius,
			}
			if err := d.Sink.Alert(ctx, p, alert); err != nil {
				// Best effort: delivery failures never block or fail a wave.
				log.Warn("provider alert failed", zap.String("providerID", p.ID), zap.Error(err))
			}
		}
		log.Info("dispatch wave completed",
			zap.Int("wave", wave),
			zap.Float64("radiusKm", radius),
			zap.Int("alerted", fresh),
		)

		wait := d.Cfg.WaveInterval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return models.StatusSearching
			case <-time.After(wait):
			}
		}

		status, err := d.currentStatus(ctx, booking.ID)
		if err != nil {
			log.Error("failed to re-check booking status", zap.Error(err))
			continue
		}
		if status != models.StatusSearching {
			// Assigned or cancelled externally; stop immediately, no
			// further alerts.
			return status
		}

		if !time.Now().Before(deadline) {
			return d.expire(ctx, booking.ID, log)
		}
	}
}

// expire performs the SEARCHING -> EXPIRED transition. It uses the same
// conditional-update mechanism as an external cancellation, so whichever
// happens first wins and the loser is simply rejected.
func (d *Dispatcher) expire(ctx context.Context, bookingID string, log *zap.Logger) models.BookingStatus {
	swapped, err := d.Repo.ConditionalUpdate(ctx, bookingID, models.StatusSearching, models.StatusExpired, nil)
	if err != nil {
		log.Error("failed to expire booking", zap.Error(err))
		return models.StatusSearching
	}
	if !swapped {
		status, err := d.currentStatus(ctx, bookingID)
		if err != nil {
			log.Error("failed to read booking after lost expire race", zap.Error(err))
			return models.StatusSearching
		}
		return status
	}
	log.Info("dispatch timed out, booking expired")
	return models.StatusExpired
}

func (d *Dispatcher) currentStatus(ctx context.Context, bookingID string) (models.BookingStatus, error) {
	var lastErr error
	for attempt := 1; attempt <= adapterRetries; attempt++ {
		booking, err := d.Repo.GetByID(ctx, bookingID)
		if err == nil {
			return booking.Status, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * adapterRetryBackoff):
		}
	}
	return "", lastErr
}

func (d *Dispatcher) findNearbyWithRetry(ctx context.Context, dest models.GeoPoint, radiusKm float64, exclude []string) ([]models.ProviderRef, error) {
	var lastErr error
	for attempt := 1; attempt <= adapterRetries; attempt++ {
		providers, err := d.Locator.FindNearby(ctx, dest, radiusKm, exclude)
		if err == nil {
			return providers, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * adapterRetryBackoff):
		}
	}
	return nil, lastErr
}
