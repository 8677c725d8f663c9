package dispatch

import (
	"context"
	"sync"

	"homefix/models"

	"go.uber.org/zap"
)

// run is one in-flight dispatch: the wave task's cancel handle plus its
// shared ephemeral state.
type run struct {
	cancel context.CancelFunc
	state  *runState
}

// Registry holds the bookings currently under active dispatch, one wave task
// per booking id. Tasks are independent and share nothing except the booking
// store.
type Registry struct {
	Dispatcher *Dispatcher
	Logger     *zap.Logger

	mu   sync.Mutex
	runs map[string]*run
	wg   sync.WaitGroup
}

// NewRegistry creates an empty registry around the given dispatcher.
func NewRegistry(d *Dispatcher, logger *zap.Logger) *Registry {
	return &Registry{
		Dispatcher: d,
		Logger:     logger,
		runs:       make(map[string]*run),
	}
}

// Register starts a dispatch run for the booking. Registration is idempotent
// per booking id: a duplicate for an id already running is a no-op, so
// at-least-once delivery from upstream is harmless. Returns false when a run
// was already active.
func (r *Registry) Register(booking models.Booking) bool {
	r.mu.Lock()
	if _, active := r.runs[booking.ID]; active {
		r.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	entry := &run{cancel: cancel, state: newRunState()}
	r.runs[booking.ID] = entry
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.remove(booking.ID)
		status := r.Dispatcher.Run(ctx, booking, entry.state)
		r.Logger.Info("dispatch run finished",
			zap.String("bookingID", booking.ID),
			zap.String("outcome", string(status)),
		)
	}()
	return true
}

func (r *Registry) remove(bookingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, bookingID)
}

// Retire cancels the booking's dispatch run, if one is active. Called when
// the booking leaves SEARCHING through the API (accept, cancel) so the task
// never out-lives its booking's relevance.
func (r *Registry) Retire(bookingID string) {
	r.mu.Lock()
	entry, ok := r.runs[bookingID]
	r.mu.Unlock()
	if ok {
		entry.cancel()
	}
}

// NoteDecline feeds a provider's decline into the booking's running
// dispatch, excluding the provider from later waves of this run (or
// re-opening them when redispatch is configured).
func (r *Registry) NoteDecline(bookingID, providerID string, redispatch bool) {
	r.mu.Lock()
	entry, ok := r.runs[bookingID]
	r.mu.Unlock()
	if ok {
		entry.state.noteDecline(providerID, redispatch)
	}
}

// Active returns the number of in-flight dispatch runs.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

// RecoverOnStartup re-registers every booking left in SEARCHING in storage,
// so no booking stays stuck without an active dispatcher after a process
// restart. Returns the number of runs started.
func (r *Registry) RecoverOnStartup(ctx context.Context) (int, error) {
	stuck, err := r.Dispatcher.Repo.FindByStatus(ctx, models.StatusSearching)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, booking := range stuck {
		if r.Register(booking) {
			recovered++
		}
	}
	if recovered > 0 {
		r.Logger.Info("recovered stuck dispatches", zap.Int("count", recovered))
	}
	return recovered, nil
}

// Shutdown cancels all runs and waits for their tasks to exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	for _, entry := range r.runs {
		entry.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
