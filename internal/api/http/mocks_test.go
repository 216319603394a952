package http_test

import (
	"context"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, renterID uuid.UUID, in service.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, renterID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Accept(ctx context.Context, bookingID, ownerID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Reject(ctx context.Context, bookingID, ownerID uuid.UUID, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, ownerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Start(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actorID, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Complete(ctx context.Context, bookingID, actorID uuid.UUID, otp string) (*service.TransitionResult, error) {
	args := m.Called(ctx, bookingID, actorID, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransitionResult), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*service.TransitionResult, error) {
	args := m.Called(ctx, bookingID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransitionResult), args.Error(1)
}

func (m *MockBookingService) Rate(ctx context.Context, bookingID, raterID uuid.UUID, rating int, review string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, raterID, rating, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, bookingID, actorID uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, actorID, proj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, actorID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) Wait() {}

type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) Fund(ctx context.Context, bookingID, renterID uuid.UUID) (*service.EscrowResult, error) {
	args := m.Called(ctx, bookingID, renterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EscrowResult), args.Error(1)
}

func (m *MockEscrowService) Release(ctx context.Context, bookingID uuid.UUID) (*service.EscrowResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EscrowResult), args.Error(1)
}

func (m *MockEscrowService) Refund(ctx context.Context, bookingID uuid.UUID, reason string) (*service.EscrowResult, error) {
	args := m.Called(ctx, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EscrowResult), args.Error(1)
}

func (m *MockEscrowService) CreateTopUp(ctx context.Context, userID uuid.UUID, amount int64) (*service.TopUpOrder, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TopUpOrder), args.Error(1)
}

func (m *MockEscrowService) VerifyTopUp(ctx context.Context, userID uuid.UUID, orderRef string, proof domain.PaymentProof) (*service.TopUpResult, error) {
	args := m.Called(ctx, userID, orderRef, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TopUpResult), args.Error(1)
}

func (m *MockEscrowService) PaymentHistory(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]domain.PaymentRecord), args.Error(1)
}

func (m *MockEscrowService) BookingPayments(ctx context.Context, bookingID, actorID uuid.UUID) ([]domain.PaymentRecord, error) {
	args := m.Called(ctx, bookingID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentRecord), args.Error(1)
}

func (m *MockEscrowService) WalletSummary(ctx context.Context, userID uuid.UUID) (*domain.WalletSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}

func (m *MockEscrowService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEscrowService) RetrySettlements(ctx context.Context, limit int32) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockEscrowService) ExpireStaleTopUps(ctx context.Context, olderThan time.Time, limit int32) (int, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Int(0), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type MockTractorLookup struct {
	mock.Mock
}

func (m *MockTractorLookup) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tractor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tractor), args.Error(1)
}

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) HasConflict(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, tractorID, start, end)
	return args.Bool(0), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
