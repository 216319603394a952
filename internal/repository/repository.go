package repository

import (
	"context"
	"time"

	"farmshare-backend/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// RecordRating folds a new rating into the user's running average.
	RecordRating(ctx context.Context, id uuid.UUID, rating int) error
}

// TractorRepository is the tractor lookup used by the booking engine.
type TractorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tractor, error)
	RecordRating(ctx context.Context, id uuid.UUID, rating int) error
	IncrementBookings(ctx context.Context, id uuid.UUID) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error)
	// GetForUpdate reads the booking with its OTPs and locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	// LockTractorSchedule serializes booking creation for one tractor until the transaction ends.
	LockTractorSchedule(ctx context.Context, tractorID uuid.UUID) error
	HasActiveOverlap(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	// ListPendingSettlement returns bookings whose escrow side effect never ran:
	// completed but still held, or cancelled while held or paid.
	ListPendingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error)
}

type WalletRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// GetForUpdate locks the wallet row, creating an empty wallet if none exists.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, userID uuid.UUID, balance int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.PaymentRecord) error
	GetByGatewayOrderForUpdate(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
	Update(ctx context.Context, p *domain.PaymentRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PaymentRecord, error)
	// TotalsByType sums completed records per type for one user.
	TotalsByType(ctx context.Context, userID uuid.UUID) (map[domain.PaymentType]int64, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentRecord, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
}

// Repositories is the set of repositories bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Tractors      TractorRepository
	Bookings      BookingRepository
	Wallets       WalletRepository
	Payments      PaymentRepository
	Notifications NotificationRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in one transaction; fn's error rolls everything back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
