package dispatch

import (
	"context"
	"errors"
	"testing"

	"homefix/models"
)

func newLifecycle(repo *memBookingRepo) *Lifecycle {
	return &Lifecycle{
		Repo:   repo,
		Fees:   FeeConfig{CancellationFee: 150, VisitingFee: 250},
		Logger: testLogger(),
	}
}

func TestAdvanceFullChain(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	booking := seedBooking(t, repo, models.StatusAssigned)

	// ASSIGNED -> JOURNEY_STARTED issues the first code.
	res, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", "")
	if err != nil {
		t.Fatalf("advance to JOURNEY_STARTED: %v", err)
	}
	if res.IssuedCode == "" {
		t.Fatal("expected a verification code for the arrival stage")
	}

	// Each subsequent stage consumes the prior code and issues the next,
	// until COMPLETED which consumes without reissuing.
	code := res.IssuedCode
	steps := []struct {
		target  models.BookingStatus
		issues  bool
		tsCheck func(b *models.Booking) bool
	}{
		{models.StatusVisited, true, func(b *models.Booking) bool { return b.VisitedAt != nil }},
		{models.StatusInProgress, true, func(b *models.Booking) bool { return true }},
		{models.StatusWorkDone, false, func(b *models.Booking) bool { return b.WorkDoneAt != nil }},
	}
	for _, step := range steps {
		res, err = lc.Advance(ctx, booking.ID, step.target, "prov-1", code)
		if err != nil {
			t.Fatalf("advance to %s: %v", step.target, err)
		}
		if step.issues && res.IssuedCode == "" {
			t.Fatalf("advance to %s issued no code", step.target)
		}
		if !step.issues && res.IssuedCode != "" {
			t.Fatalf("advance to %s issued unexpected code %q", step.target, res.IssuedCode)
		}
		stored, _ := repo.GetByID(ctx, booking.ID)
		if stored.Status != step.target {
			t.Fatalf("stored status = %s, want %s", stored.Status, step.target)
		}
		if !step.tsCheck(stored) {
			t.Fatalf("stage timestamp missing after advance to %s", step.target)
		}
		code = res.IssuedCode
	}

	// WORK_DONE -> COMPLETED needs no code and clears the pending one.
	res, err = lc.Advance(ctx, booking.ID, models.StatusCompleted, "user-1", "")
	if err != nil {
		t.Fatalf("advance to COMPLETED: %v", err)
	}
	stored, _ := repo.GetByID(ctx, booking.ID)
	if stored.Status != models.StatusCompleted || stored.CompletedAt == nil {
		t.Fatalf("booking not completed: status=%s completedAt=%v", stored.Status, stored.CompletedAt)
	}
	if stored.StageCode != "" {
		t.Fatalf("terminal booking still carries stage code %q", stored.StageCode)
	}
}

func TestAdvanceRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	booking := seedBooking(t, repo, models.StatusAssigned)

	res, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", "")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := lc.Advance(ctx, booking.ID, models.StatusVisited, "prov-1", "WRONG1"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("wrong code: got %v, want ErrCodeMismatch", err)
	}
	// Rejected attempt must not have moved the booking.
	stored, _ := repo.GetByID(ctx, booking.ID)
	if stored.Status != models.StatusJourneyStarted {
		t.Fatalf("status moved to %s after rejected code", stored.Status)
	}

	// The same actor retries with the right code and succeeds.
	if _, err := lc.Advance(ctx, booking.ID, models.StatusVisited, "prov-1", res.IssuedCode); err != nil {
		t.Fatalf("retry with correct code: %v", err)
	}
}

func TestAdvanceEmptyCodeNeverMatches(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	booking := seedBooking(t, repo, models.StatusAssigned)

	if _, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", ""); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Blank out the stored code directly; an empty expected code must never
	// match an empty supplied one.
	repo.mu.Lock()
	repo.bookings[booking.ID].StageCode = ""
	repo.mu.Unlock()

	if _, err := lc.Advance(ctx, booking.ID, models.StatusVisited, "prov-1", ""); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("empty-vs-empty code: got %v, want ErrCodeMismatch", err)
	}
}

func TestAdvanceIllegalTransitions(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)

	// Skipping a stage.
	booking := seedBooking(t, repo, models.StatusAssigned)
	if _, err := lc.Advance(ctx, booking.ID, models.StatusVisited, "prov-1", "ABC123"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stage skip: got %v, want ErrInvalidTransition", err)
	}

	// Dispatch-owned targets are not advanceable.
	for _, target := range []models.BookingStatus{models.StatusSearching, models.StatusAssigned, models.StatusExpired, models.StatusCancelled} {
		if _, err := lc.Advance(ctx, booking.ID, target, "prov-1", ""); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("advance to %s: got %v, want ErrInvalidTransition", target, err)
		}
	}

	// Unknown booking.
	if _, err := lc.Advance(ctx, "no-such-id", models.StatusJourneyStarted, "prov-1", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown booking: got %v, want ErrNotFound", err)
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)

	for _, terminal := range []models.BookingStatus{models.StatusCompleted, models.StatusCancelled, models.StatusRejected, models.StatusExpired} {
		booking := seedBooking(t, repo, terminal)

		if _, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", ""); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("advance from %s: got %v, want ErrInvalidTransition", terminal, err)
		}
		if _, err := lc.Cancel(ctx, booking.ID, models.ActorCustomer, "too late"); !errors.Is(err, ErrNotCancellable) {
			t.Errorf("cancel from %s: got %v, want ErrNotCancellable", terminal, err)
		}
		stored, _ := repo.GetByID(ctx, booking.ID)
		if stored.Status != terminal {
			t.Errorf("terminal booking moved from %s to %s", terminal, stored.Status)
		}
	}
}

func TestRejectedByProviderAdvance(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	booking := seedBooking(t, repo, models.StatusAssigned)

	res, err := lc.Advance(ctx, booking.ID, models.StatusRejected, "prov-1", "")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.IssuedCode != "" {
		t.Fatalf("rejection issued a code %q", res.IssuedCode)
	}
	stored, _ := repo.GetByID(ctx, booking.ID)
	if stored.Status != models.StatusRejected {
		t.Fatalf("status = %s, want REJECTED", stored.Status)
	}
}

func TestCancelFeeByStage(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		stage models.BookingStatus
		want  float64
	}{
		{models.StatusRequested, 0},
		{models.StatusSearching, 0},
		{models.StatusAssigned, 150},
		{models.StatusJourneyStarted, 150},
		{models.StatusVisited, 250},
		{models.StatusInProgress, 250},
		{models.StatusWorkDone, 250},
	}
	for _, tc := range cases {
		repo := newMemBookingRepo()
		lc := newLifecycle(repo)
		booking := seedBooking(t, repo, tc.stage)

		fee, err := lc.Cancel(ctx, booking.ID, models.ActorCustomer, "changed plans")
		if err != nil {
			t.Fatalf("cancel at %s: %v", tc.stage, err)
		}
		if fee != tc.want {
			t.Errorf("cancel at %s: fee = %v, want %v", tc.stage, fee, tc.want)
		}

		stored, _ := repo.GetByID(ctx, booking.ID)
		if stored.Status != models.StatusCancelled {
			t.Errorf("cancel at %s: status = %s, want CANCELLED", tc.stage, stored.Status)
		}
		if stored.CancellationFee != tc.want {
			t.Errorf("cancel at %s: stored fee = %v, want %v", tc.stage, stored.CancellationFee, tc.want)
		}
		if stored.CancelledBy != models.ActorCustomer || stored.CancelReason != "changed plans" {
			t.Errorf("cancel at %s: actor/reason not recorded: %s %q", tc.stage, stored.CancelledBy, stored.CancelReason)
		}
		if stored.CancelledAt == nil {
			t.Errorf("cancel at %s: cancelled_at not set", tc.stage)
		}
	}
}

func TestCancelUsesPerBookingVisitingFee(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)

	booking := seedBooking(t, repo, models.StatusVisited)
	repo.mu.Lock()
	repo.bookings[booking.ID].VisitingFee = 400
	repo.mu.Unlock()

	fee, err := lc.Cancel(ctx, booking.ID, models.ActorCustomer, "changed plans")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if fee != 400 {
		t.Fatalf("fee = %v, want per-booking visiting fee 400", fee)
	}
}

func TestCancelClearsStageCode(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	booking := seedBooking(t, repo, models.StatusAssigned)

	if _, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", ""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := lc.Cancel(ctx, booking.ID, models.ActorProvider, "vehicle broke down"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stored, _ := repo.GetByID(ctx, booking.ID)
	if stored.StageCode != "" {
		t.Fatalf("cancelled booking still carries stage code %q", stored.StageCode)
	}
}

func TestCustomCodeMatcher(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	lc := newLifecycle(repo)
	lc.Match = func(expected, supplied string) bool { return supplied == "MASTER" }

	booking := seedBooking(t, repo, models.StatusAssigned)
	if _, err := lc.Advance(ctx, booking.ID, models.StatusJourneyStarted, "prov-1", ""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := lc.Advance(ctx, booking.ID, models.StatusVisited, "prov-1", "MASTER"); err != nil {
		t.Fatalf("advance with custom matcher: %v", err)
	}
}
