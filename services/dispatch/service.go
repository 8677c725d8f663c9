package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "homefix/database/repository/booking"
	providerRepo "homefix/database/repository/provider"
	"homefix/models"
	"homefix/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDispatchService implements Service.
type DefaultDispatchService struct {
	Repo      bookingRepo.BookingRepository
	Locator   providerRepo.ProviderLocator
	Registry  *Registry
	Lifecycle *Lifecycle
	Resolver  *Resolver
	Cfg       Config
	Logger    *zap.Logger
}

func newBookingNumber(id string) string {
	return "HF-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func (s *DefaultDispatchService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if len(input.Destination.Coordinates) != 2 {
		return nil, fmt.Errorf("destination coordinates are required for dispatch")
	}

	id := uuid.New().String()
	booking := &models.Booking{
		ID:            id,
		BookingNumber: newBookingNumber(id),
		UserID:        input.UserID,
		ServiceType:   input.ServiceType,
		Status:        models.StatusRequested,
		Destination:   input.Destination,
		CreatedAt:     time.Now().UTC(),
		BasePrice:     input.BasePrice,
		Discount:      input.Discount,
		Tax:           input.Tax,
		VisitingFee:   input.VisitingFee,
		FinalAmount:   input.BasePrice - input.Discount + input.Tax + input.VisitingFee,
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.Registry.Register(*booking)
	s.Logger.Info("booking created and dispatched",
		zap.String("bookingID", booking.ID),
		zap.String("bookingNumber", booking.BookingNumber),
	)
	return booking, nil
}

func (s *DefaultDispatchService) RegisterBooking(ctx context.Context, bookingID string) error {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	switch booking.Status {
	case models.StatusRequested, models.StatusSearching:
		s.Registry.Register(*booking)
		return nil
	default:
		return ErrInvalidTransition
	}
}

func (s *DefaultDispatchService) Accept(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	booking, err := s.Resolver.Accept(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}

	// The wave task notices the status change on its own; retiring just
	// wakes it up immediately.
	s.Registry.Retire(bookingID)

	if err := s.Locator.MarkAvailability(ctx, providerID, false); err != nil {
		s.Logger.Warn("failed to mark provider busy", zap.String("providerID", providerID), zap.Error(err))
	}
	return booking, nil
}

func (s *DefaultDispatchService) Decline(ctx context.Context, bookingID, providerID string) error {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	switch booking.Status {
	case models.StatusSearching:
		s.Registry.NoteDecline(bookingID, providerID, s.Cfg.RedispatchDeclined)
		return nil
	case models.StatusAssigned:
		if booking.ProviderID != providerID {
			return ErrInvalidTransition
		}
		// Winner backs out: rare path, lands terminal REJECTED.
		swapped, err := s.Repo.ConditionalUpdate(ctx, bookingID, models.StatusAssigned, models.StatusRejected, map[string]any{
			fieldStageCode: nil,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return ErrInvalidTransition
		}
		s.Logger.Info("booking rejected by assigned provider",
			zap.String("bookingID", bookingID),
			zap.String("providerID", providerID),
		)
		if err := s.Locator.MarkAvailability(ctx, providerID, true); err != nil {
			s.Logger.Warn("failed to mark provider available", zap.String("providerID", providerID), zap.Error(err))
		}
		return nil
	default:
		// Declining a booking that already moved on is harmless.
		return nil
	}
}

func (s *DefaultDispatchService) UpdateLiveLocation(ctx context.Context, bookingID string, loc models.GeoPoint) error {
	if err := s.Repo.UpdateProviderLocation(ctx, bookingID, loc); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *DefaultDispatchService) Advance(ctx context.Context, bookingID string, target models.BookingStatus, actor string, code string) (*AdvanceResult, error) {
	result, err := s.Lifecycle.Advance(ctx, bookingID, target, actor, code)
	if err != nil {
		return nil, err
	}

	if result.IssuedCode != "" {
		utils.MirrorStageCode(ctx, bookingID, result.IssuedCode)
	} else {
		utils.DropStageCode(ctx, bookingID)
	}

	if target == models.StatusCompleted || target == models.StatusRejected {
		s.releaseProvider(ctx, bookingID)
	}
	return result, nil
}

func (s *DefaultDispatchService) Cancel(ctx context.Context, bookingID string, actor models.CancelActor, reason string) (float64, error) {
	fee, err := s.Lifecycle.Cancel(ctx, bookingID, actor, reason)
	if err != nil {
		return 0, err
	}

	s.Registry.Retire(bookingID)
	utils.DropStageCode(ctx, bookingID)
	s.releaseProvider(ctx, bookingID)
	return fee, nil
}

func (s *DefaultDispatchService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.getBooking(ctx, bookingID)
}

func (s *DefaultDispatchService) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

// releaseProvider flips the assigned provider back to available once the
// booking reaches a terminal state.
func (s *DefaultDispatchService) releaseProvider(ctx context.Context, bookingID string) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil || booking.ProviderID == "" {
		return
	}
	if err := s.Locator.MarkAvailability(ctx, booking.ProviderID, true); err != nil {
		s.Logger.Warn("failed to mark provider available",
			zap.String("providerID", booking.ProviderID), zap.Error(err))
	}
}
