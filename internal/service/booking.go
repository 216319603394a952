package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	maxDescriptionLength = 300
	maxNotesLength       = 500
	maxDurationHours     = 720
	maxReviewLength      = 500
	defaultBookingPage   = 20
	maxBookingPage       = 100

	defaultCancelReason = "Booking cancelled"
)

type bookingService struct {
	store    repository.Store
	escrow   EscrowService
	notifier Notifier
	policy   domain.Policy

	wg sync.WaitGroup
}

func NewBookingService(store repository.Store, escrow EscrowService, notifier Notifier, policy domain.Policy) BookingService {
	return &bookingService{
		store:    store,
		escrow:   escrow,
		notifier: notifier,
		policy:   policy,
	}
}

func validateCreateInput(in CreateBookingInput) error {
	if in.TractorID == uuid.Nil {
		return fmt.Errorf("%w: tractor is required", domain.ErrInvalidInput)
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", domain.ErrInvalidInput)
	}
	if in.DurationHours < 1 {
		return fmt.Errorf("%w: duration must be at least one hour", domain.ErrInvalidInput)
	}
	if in.DurationHours > maxDurationHours {
		return fmt.Errorf("%w: duration cannot exceed %d hours", domain.ErrInvalidInput, maxDurationHours)
	}
	if !in.WorkType.Valid() {
		return fmt.Errorf("%w: unknown work type %q", domain.ErrInvalidInput, in.WorkType)
	}
	if in.Acres <= 0 {
		return fmt.Errorf("%w: acres must be positive", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.WorkDescription) > maxDescriptionLength {
		return fmt.Errorf("%w: work description exceeds %d characters", domain.ErrInvalidInput, maxDescriptionLength)
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", domain.ErrInvalidInput, maxNotesLength)
	}
	return nil
}

func (s *bookingService) Create(ctx context.Context, renterID uuid.UUID, in CreateBookingInput) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Create", "renterID", renterID, "tractorID", in.TractorID)

	if err := validateCreateInput(in); err != nil {
		logger.ExitMethodWithError("bookingService.Create", err)
		return nil, err
	}

	var created *domain.Booking
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tractor, err := repos.Tractors.GetByID(ctx, in.TractorID)
		if err != nil {
			return err
		}
		if !tractor.IsActive {
			return fmt.Errorf("%w: tractor is not available for booking", domain.ErrInvalidState)
		}
		if tractor.OwnerID == renterID {
			return fmt.Errorf("%w: cannot book your own tractor", domain.ErrInvalidInput)
		}

		start := in.StartTime.UTC()
		end := start.Add(time.Duration(in.DurationHours) * time.Hour)

		if err := repos.Bookings.LockTractorSchedule(ctx, tractor.ID); err != nil {
			return err
		}
		conflict, err := NewConflictChecker(repos.Bookings).HasConflict(ctx, tractor.ID, start, end)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrConflict
		}

		total := domain.BookingTotal(tractor.HourlyRate, in.DurationHours)
		fee, earnings := domain.ComputeSplit(total, s.policy.FeeRate)

		startOTP, err := generateOTP(s.policy.OTPLength)
		if err != nil {
			return err
		}
		endOTP, err := generateOTP(s.policy.OTPLength)
		if err != nil {
			return err
		}

		b := &domain.Booking{
			ID:            uuid.New(),
			RenterID:      renterID,
			OwnerID:       tractor.OwnerID,
			TractorID:     tractor.ID,
			StartTime:     start,
			EndTime:       end,
			DurationHours: in.DurationHours,
			WorkDetails:   in.WorkDetails,
			TotalAmount:   total,
			PlatformFee:   fee,
			OwnerEarnings: earnings,
			Status:        domain.BookingStatusPending,
			PaymentStatus: domain.PaymentStatusPending,
			StartOTP:      startOTP,
			EndOTP:        endOTP,
		}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Create", err, "tractorID", in.TractorID)
		return nil, err
	}

	logger.Info("Booking created", "bookingID", created.ID, "tractorID", created.TractorID,
		"total", created.TotalAmount, "platformFee", created.PlatformFee)
	s.notify(created.OwnerID, created.ID, created.Status)
	logger.ExitMethod("bookingService.Create", "bookingID", created.ID)
	return created.WithoutSecrets(), nil
}

// transition locks the booking, applies fn and persists the result in one
// transaction. fn must leave b untouched when it returns an error.
func (s *bookingService) transition(ctx context.Context, method string, bookingID, actorID uuid.UUID,
	fn func(b *domain.Booking) error) (*domain.Booking, error) {

	var (
		updated *domain.Booking
		from    domain.BookingStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		from = b.Status
		if err := fn(b); err != nil {
			return err
		}
		if err := domain.CheckStatusPair(b.Status, b.PaymentStatus); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "bookingID", bookingID, "actorID", actorID)
		return nil, err
	}

	logger.BookingTransition(updated.ID, string(from), string(updated.Status), "actorID", actorID)
	s.notify(updated.Counterparty(actorID), updated.ID, updated.Status)
	return updated.WithoutSecrets(), nil
}

func requireStatus(b *domain.Booking, want domain.BookingStatus) error {
	if b.Status != want {
		return fmt.Errorf("%w: booking is %s, expected %s", domain.ErrInvalidState, b.Status, want)
	}
	return nil
}

func requireOwner(b *domain.Booking, userID uuid.UUID) error {
	if b.OwnerID != userID {
		return fmt.Errorf("%w: only the tractor owner can do this", domain.ErrUnauthorized)
	}
	return nil
}

func requireParty(b *domain.Booking, userID uuid.UUID) error {
	if !b.IsParty(userID) {
		return fmt.Errorf("%w: not a party to this booking", domain.ErrUnauthorized)
	}
	return nil
}

func (s *bookingService) Accept(ctx context.Context, bookingID, ownerID uuid.UUID) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Accept", "bookingID", bookingID, "ownerID", ownerID)
	return s.transition(ctx, "bookingService.Accept", bookingID, ownerID,
		func(b *domain.Booking) error {
			if err := requireOwner(b, ownerID); err != nil {
				return err
			}
			if err := requireStatus(b, domain.BookingStatusPending); err != nil {
				return err
			}
			b.Status = domain.BookingStatusAccepted
			return nil
		})
}

func (s *bookingService) Reject(ctx context.Context, bookingID, ownerID uuid.UUID, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Reject", "bookingID", bookingID, "ownerID", ownerID)
	return s.transition(ctx, "bookingService.Reject", bookingID, ownerID,
		func(b *domain.Booking) error {
			if err := requireOwner(b, ownerID); err != nil {
				return err
			}
			if err := requireStatus(b, domain.BookingStatusPending); err != nil {
				return err
			}
			now := time.Now().UTC()
			b.Status = domain.BookingStatusRejected
			b.CancellationReason = reason
			b.CancelledBy = &ownerID
			b.CancelledAt = &now
			return nil
		})
}

func (s *bookingService) Start(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Start", "bookingID", bookingID, "actorID", actorID)
	return s.transition(ctx, "bookingService.Start", bookingID, actorID,
		func(b *domain.Booking) error {
			if err := requireParty(b, actorID); err != nil {
				return err
			}
			if err := requireStatus(b, domain.BookingStatusAccepted); err != nil {
				return err
			}
			if b.PaymentStatus != domain.PaymentStatusHeld {
				return fmt.Errorf("%w: booking must be funded before work starts", domain.ErrInvalidState)
			}
			if !otpMatches(b.StartOTP, otp) {
				return domain.ErrInvalidOTP
			}
			now := time.Now().UTC()
			b.Status = domain.BookingStatusInProgress
			b.ActualStartTime = &now
			return nil
		})
}

func (s *bookingService) Complete(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*TransitionResult, error) {
	logger.EnterMethod("bookingService.Complete", "bookingID", bookingID, "actorID", actorID)
	b, err := s.transition(ctx, "bookingService.Complete", bookingID, actorID,
		func(b *domain.Booking) error {
			if err := requireParty(b, actorID); err != nil {
				return err
			}
			if err := requireStatus(b, domain.BookingStatusInProgress); err != nil {
				return err
			}
			if !otpMatches(b.EndOTP, otp) {
				return domain.ErrInvalidOTP
			}
			now := time.Now().UTC()
			b.Status = domain.BookingStatusCompleted
			b.ActualEndTime = &now
			return nil
		})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Booking: b}
	if b.PaymentStatus == domain.PaymentStatusHeld {
		result.SideEffect = s.settle(ctx, "release", b, func() (*EscrowResult, error) {
			return s.escrow.Release(ctx, b.ID)
		})
	}
	logger.ExitMethod("bookingService.Complete", "bookingID", bookingID)
	return result, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*TransitionResult, error) {
	logger.EnterMethod("bookingService.Cancel", "bookingID", bookingID, "actorID", actorID)
	if reason == "" {
		reason = defaultCancelReason
	}
	b, err := s.transition(ctx, "bookingService.Cancel", bookingID, actorID,
		func(b *domain.Booking) error {
			if err := requireParty(b, actorID); err != nil {
				return err
			}
			if b.Status.IsTerminal() {
				return fmt.Errorf("%w: a %s booking cannot be cancelled", domain.ErrInvalidState, b.Status)
			}
			now := time.Now().UTC()
			b.Status = domain.BookingStatusCancelled
			b.CancellationReason = reason
			b.CancelledBy = &actorID
			b.CancelledAt = &now
			return nil
		})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Booking: b}
	if b.PaymentStatus.IsRefundable() {
		result.SideEffect = s.settle(ctx, "refund", b, func() (*EscrowResult, error) {
			return s.escrow.Refund(ctx, b.ID, reason)
		})
	}
	logger.ExitMethod("bookingService.Cancel", "bookingID", bookingID)
	return result, nil
}

// settle runs the escrow step for a committed transition. A failure is
// reported on the outcome and left for the settlement retry job.
func (s *bookingService) settle(ctx context.Context, op string, b *domain.Booking, run func() (*EscrowResult, error)) *SideEffectOutcome {
	outcome := &SideEffectOutcome{Attempted: true}
	res, err := run()
	if err != nil {
		outcome.Err = err
		logger.SideEffectFailed(op, err, "bookingID", b.ID)
		return outcome
	}
	outcome.MoneyMoved = true
	outcome.Payment = res.Payment
	b.PaymentStatus = res.Booking.PaymentStatus
	b.UpdatedAt = res.Booking.UpdatedAt
	return outcome
}

func (s *bookingService) Rate(ctx context.Context, bookingID, raterID uuid.UUID, rating int, review string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Rate", "bookingID", bookingID, "raterID", raterID)

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(review) > maxReviewLength {
		return nil, fmt.Errorf("%w: review exceeds %d characters", domain.ErrInvalidInput, maxReviewLength)
	}

	var rated *domain.Booking
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := requireParty(b, raterID); err != nil {
			return err
		}
		if err := requireStatus(b, domain.BookingStatusCompleted); err != nil {
			return err
		}

		r := rating
		if raterID == b.RenterID {
			if b.Ratings.FarmerRating != nil {
				return fmt.Errorf("%w: booking already rated", domain.ErrAlreadyProcessed)
			}
			b.Ratings.FarmerRating = &r
			b.Ratings.FarmerReview = review
			if err := repos.Users.RecordRating(ctx, b.OwnerID, rating); err != nil {
				return err
			}
			if err := repos.Tractors.RecordRating(ctx, b.TractorID, rating); err != nil {
				return err
			}
			if err := repos.Tractors.IncrementBookings(ctx, b.TractorID); err != nil {
				return err
			}
		} else {
			if b.Ratings.OwnerRating != nil {
				return fmt.Errorf("%w: booking already rated", domain.ErrAlreadyProcessed)
			}
			b.Ratings.OwnerRating = &r
			b.Ratings.OwnerReview = review
			if err := repos.Users.RecordRating(ctx, b.RenterID, rating); err != nil {
				return err
			}
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		rated = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Rate", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("bookingService.Rate", "bookingID", bookingID, "rating", rating)
	return rated.WithoutSecrets(), nil
}

func (s *bookingService) Get(ctx context.Context, bookingID, actorID uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error) {
	b, err := s.store.Repos().Bookings.GetByID(ctx, bookingID, proj)
	if err != nil {
		return nil, err
	}
	if err := requireParty(b, actorID); err != nil {
		return nil, err
	}
	// OTPs belong to the renter, who hands them over on site.
	if proj.IncludeOTPs && actorID != b.RenterID {
		return b.WithoutSecrets(), nil
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, actorID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	switch filter.Role {
	case domain.BookingRoleAny, domain.BookingRoleRenter, domain.BookingRoleOwner:
	default:
		return nil, 0, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, filter.Role)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultBookingPage
	}
	if filter.PageSize > maxBookingPage {
		filter.PageSize = maxBookingPage
	}
	return s.store.Repos().Bookings.ListByUser(ctx, actorID, filter)
}

// notify dispatches a status change without holding up the caller.
func (s *bookingService) notify(recipient, bookingID uuid.UUID, status domain.BookingStatus) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.NotifyStatusChange(ctx, recipient, bookingID, status); err != nil {
			logger.SideEffectFailed("notify", err, "bookingID", bookingID, "recipient", recipient, "status", status)
		}
	}()
}

func (s *bookingService) Wait() {
	s.wg.Wait()
}
