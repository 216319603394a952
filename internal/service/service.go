package service

import (
	"context"
	"time"

	"farmshare-backend/internal/domain"

	"github.com/google/uuid"
)

type BookingService interface {
	Create(ctx context.Context, renterID uuid.UUID, in CreateBookingInput) (*domain.Booking, error)
	Accept(ctx context.Context, bookingID, ownerID uuid.UUID) (*domain.Booking, error)
	Reject(ctx context.Context, bookingID, ownerID uuid.UUID, reason string) (*domain.Booking, error)
	Start(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*domain.Booking, error)
	Complete(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*TransitionResult, error)
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*TransitionResult, error)
	Rate(ctx context.Context, bookingID, raterID uuid.UUID, rating int, review string) (*domain.Booking, error)
	Get(ctx context.Context, bookingID, actorID uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error)
	List(ctx context.Context, actorID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	// Wait blocks until in-flight notifications have been dispatched.
	Wait()
}

type EscrowService interface {
	Fund(ctx context.Context, bookingID, renterID uuid.UUID) (*EscrowResult, error)
	Release(ctx context.Context, bookingID uuid.UUID) (*EscrowResult, error)
	Refund(ctx context.Context, bookingID uuid.UUID, reason string) (*EscrowResult, error)
	CreateTopUp(ctx context.Context, userID uuid.UUID, amount int64) (*TopUpOrder, error)
	VerifyTopUp(ctx context.Context, userID uuid.UUID, orderRef string, proof domain.PaymentProof) (*TopUpResult, error)
	PaymentHistory(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error)
	// BookingPayments lists the caller's own records for one booking, oldest first.
	BookingPayments(ctx context.Context, bookingID, actorID uuid.UUID) ([]domain.PaymentRecord, error)
	WalletSummary(ctx context.Context, userID uuid.UUID) (*domain.WalletSummary, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	// RetrySettlements re-runs releases and refunds that failed after their transition committed.
	RetrySettlements(ctx context.Context, limit int32) (int, error)
	// ExpireStaleTopUps fails pending top-ups created before olderThan.
	ExpireStaleTopUps(ctx context.Context, olderThan time.Time, limit int32) (int, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// PaymentGateway is the external processor that backs wallet top-ups.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (string, error)
	Verify(ctx context.Context, orderRef string, amount int64, proof domain.PaymentProof) (bool, error)
}

// Notifier delivers booking status changes; delivery is best-effort.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error
}

type CreateBookingInput struct {
	TractorID     uuid.UUID
	StartTime     time.Time
	DurationHours int
	domain.WorkDetails
}

// SideEffectOutcome reports the escrow step that follows a committed transition.
type SideEffectOutcome struct {
	Attempted  bool
	MoneyMoved bool
	Err        error
	Payment    *domain.PaymentRecord
}

// TransitionResult carries the committed booking and, when a money movement
// applies, the outcome of that movement.
type TransitionResult struct {
	Booking    *domain.Booking
	SideEffect *SideEffectOutcome
}

type EscrowResult struct {
	Booking *domain.Booking       `json:"booking"`
	Payment *domain.PaymentRecord `json:"payment"`
}

type TopUpOrder struct {
	OrderRef string                `json:"order_ref"`
	Amount   int64                 `json:"amount"`
	Payment  *domain.PaymentRecord `json:"payment"`
}

type TopUpResult struct {
	Payment *domain.PaymentRecord `json:"payment"`
	Balance int64                 `json:"balance"`
}
