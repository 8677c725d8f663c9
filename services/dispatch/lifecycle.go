package dispatch

import (
	"context"
	"errors"
	"time"

	bookingRepo "homefix/database/repository/booking"
	"homefix/models"
	"homefix/utils"

	"go.uber.org/zap"
)

// CodeMatcher compares a stored stage code with the one a caller supplied.
// The engine issues codes but does not validate beyond this predicate, so it
// stays swappable for integrations with their own code channels.
type CodeMatcher func(expected, supplied string) bool

// EqualCodeMatcher is the default matcher: plain equality, empty never matches.
func EqualCodeMatcher(expected, supplied string) bool {
	return expected != "" && expected == supplied
}

// transitions is the closed table of legal status changes. Anything not
// listed here fails with ErrInvalidTransition.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusRequested:      {models.StatusSearching, models.StatusCancelled},
	models.StatusSearching:      {models.StatusAssigned, models.StatusExpired, models.StatusCancelled},
	models.StatusAssigned:       {models.StatusJourneyStarted, models.StatusRejected, models.StatusCancelled},
	models.StatusJourneyStarted: {models.StatusVisited, models.StatusCancelled},
	models.StatusVisited:        {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:     {models.StatusWorkDone, models.StatusCancelled},
	models.StatusWorkDone:       {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// advancePredecessor maps each status reachable through Advance to its
// required predecessor. Dispatch-owned transitions (SEARCHING, ASSIGNED,
// EXPIRED) and CANCELLED are not advanceable and live outside this table.
var advancePredecessor = map[models.BookingStatus]models.BookingStatus{
	models.StatusJourneyStarted: models.StatusAssigned,
	models.StatusVisited:        models.StatusJourneyStarted,
	models.StatusInProgress:     models.StatusVisited,
	models.StatusWorkDone:       models.StatusInProgress,
	models.StatusCompleted:      models.StatusWorkDone,
	models.StatusRejected:       models.StatusAssigned,
}

// consumesCode marks targets that must present the pending stage code.
var consumesCode = map[models.BookingStatus]bool{
	models.StatusVisited:    true,
	models.StatusInProgress: true,
	models.StatusWorkDone:   true,
}

// issuesCode marks targets whose transition generates the code consumed by
// the following stage.
var issuesCode = map[models.BookingStatus]bool{
	models.StatusJourneyStarted: true,
	models.StatusVisited:        true,
	models.StatusInProgress:     true,
}

// stageTimestampField maps a target status to the timestamp it sets. Each
// timestamp is written at most once, by the single conditional update that
// enters the stage.
var stageTimestampField = map[models.BookingStatus]string{
	models.StatusJourneyStarted: fieldJourneyStartedAt,
	models.StatusVisited:        fieldVisitedAt,
	models.StatusWorkDone:       fieldWorkDoneAt,
	models.StatusCompleted:      fieldCompletedAt,
}

// Lifecycle validates and applies every post-assignment status transition.
// It never holds booking state: each decision conditions on the stored
// status through a single atomic update.
type Lifecycle struct {
	Repo   bookingRepo.BookingRepository
	Fees   FeeConfig
	Match  CodeMatcher
	Logger *zap.Logger
}

// AdvanceResult reports a successful transition.
type AdvanceResult struct {
	Status models.BookingStatus `json:"status"`
	// IssuedCode is the verification code for the next stage, empty when the
	// target stage issues none. Surfaced to the customer out of band.
	IssuedCode string `json:"issuedCode,omitempty"`
}

func (l *Lifecycle) matcher() CodeMatcher {
	if l.Match != nil {
		return l.Match
	}
	return EqualCodeMatcher
}

// Advance moves the booking to target if and only if its stored status is the
// legal predecessor, applying timestamp and code bookkeeping in the same
// atomic write. A transition attempted from any other state fails with
// ErrInvalidTransition and has no side effects.
func (l *Lifecycle) Advance(ctx context.Context, id string, target models.BookingStatus, actor string, code string) (*AdvanceResult, error) {
	pred, ok := advancePredecessor[target]
	if !ok {
		return nil, ErrInvalidTransition
	}

	booking, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if consumesCode[target] && !l.matcher()(booking.StageCode, code) {
		return nil, ErrCodeMismatch
	}

	fields := map[string]any{}
	if tsField, ok := stageTimestampField[target]; ok {
		fields[tsField] = time.Now().UTC()
	}

	var issued string
	if issuesCode[target] {
		issued, err = utils.NewStageCode(6)
		if err != nil {
			return nil, err
		}
		fields[fieldStageCode] = issued
	} else {
		// Consume without reissue; terminal and rejected stages carry none.
		fields[fieldStageCode] = nil
	}

	swapped, err := l.Repo.ConditionalUpdate(ctx, id, pred, target, fields)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrInvalidTransition
	}

	l.Logger.Info("booking advanced",
		zap.String("bookingID", id),
		zap.String("from", string(pred)),
		zap.String("to", string(target)),
		zap.String("actor", actor),
	)
	return &AdvanceResult{Status: target, IssuedCode: issued}, nil
}

// feesFor applies the per-booking visiting fee override when set.
func (l *Lifecycle) feesFor(b *models.Booking) FeeConfig {
	fees := l.Fees
	if b.VisitingFee > 0 {
		fees.VisitingFee = b.VisitingFee
	}
	return fees
}

// Cancel evaluates the stage-based penalty and attempts the CANCELLED
// transition carrying the fee in the same atomic update. If the booking
// advanced past a cancellable state in the meantime, the computed fee is
// discarded and ErrNotCancellable is returned.
func (l *Lifecycle) Cancel(ctx context.Context, id string, actor models.CancelActor, reason string) (float64, error) {
	booking, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if booking.Status.IsTerminal() {
		return 0, ErrNotCancellable
	}

	fee := ComputePenalty(booking.Status, l.feesFor(booking))
	fields := map[string]any{
		fieldCancelledAt:     time.Now().UTC(),
		fieldCancelReason:    reason,
		fieldCancelledBy:     actor,
		fieldCancellationFee: fee,
		fieldStageCode:       nil,
	}

	swapped, err := l.Repo.ConditionalUpdate(ctx, id, booking.Status, models.StatusCancelled, fields)
	if err != nil {
		return 0, err
	}
	if !swapped {
		return 0, ErrNotCancellable
	}

	l.Logger.Info("booking cancelled",
		zap.String("bookingID", id),
		zap.String("stageReached", string(booking.Status)),
		zap.String("actor", string(actor)),
		zap.Float64("fee", fee),
	)
	return fee, nil
}
