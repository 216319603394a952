package service_test

import (
	"context"
	"testing"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository/memory"
	"farmshare-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	args := m.Called(ctx, recipient, bookingID, status)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (string, error) {
	args := m.Called(ctx, amount, receipt)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, orderRef string, amount int64, proof domain.PaymentProof) (bool, error) {
	args := m.Called(ctx, orderRef, amount, proof)
	return args.Bool(0), args.Error(1)
}

// fixture wires both services over an in-memory store with one renter, one
// owner and one tractor priced at 500 per hour.
type fixture struct {
	store    *memory.Store
	notifier *MockNotifier
	gateway  *MockPaymentGateway
	escrow   service.EscrowService
	bookings service.BookingService

	renter  uuid.UUID
	owner   uuid.UUID
	tractor domain.Tractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewStore(),
		notifier: new(MockNotifier),
		gateway:  new(MockPaymentGateway),
		renter:   uuid.New(),
		owner:    uuid.New(),
	}
	f.notifier.On("NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.store.AddUser(domain.User{ID: f.renter, Name: "Ravi"})
	f.store.AddUser(domain.User{ID: f.owner, Name: "Meena"})
	f.tractor = domain.Tractor{ID: uuid.New(), OwnerID: f.owner, Name: "Mahindra 575", HourlyRate: 500, IsActive: true}
	f.store.AddTractor(f.tractor)

	f.escrow = service.NewEscrowService(f.store, f.gateway, service.TopUpLimits{Min: 10000, Max: 5000000})
	f.bookings = service.NewBookingService(f.store, f.escrow, f.notifier, domain.DefaultPolicy())
	t.Cleanup(f.bookings.Wait)
	return f
}

func (f *fixture) input(start time.Time, hours int) service.CreateBookingInput {
	return service.CreateBookingInput{
		TractorID:     f.tractor.ID,
		StartTime:     start,
		DurationHours: hours,
		WorkDetails: domain.WorkDetails{
			WorkType:    domain.WorkTypePlowing,
			Acres:       2.5,
			FarmAddress: "Survey 42, Nashik",
		},
	}
}

var tomorrow = time.Date(2026, 11, 2, 6, 0, 0, 0, time.UTC)

// create books two hours tomorrow, for a total of 1000.
func (f *fixture) create(t *testing.T) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), f.renter, f.input(tomorrow, 2))
	require.NoError(t, err)
	return b
}

// otps reads the booking's codes the way the renter would.
func (f *fixture) otps(t *testing.T, id uuid.UUID) (string, string) {
	t.Helper()
	b, err := f.bookings.Get(context.Background(), id, f.renter, domain.ProjectionWithOTPs)
	require.NoError(t, err)
	return b.StartOTP, b.EndOTP
}

// funded creates, accepts and funds a booking, seeding the renter with 1000 if short.
func (f *fixture) funded(t *testing.T) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	if f.balance(t, f.renter) < 1000 {
		f.store.SetBalance(f.renter, 1000)
	}
	b := f.create(t)
	_, err := f.bookings.Accept(ctx, b.ID, f.owner)
	require.NoError(t, err)
	res, err := f.escrow.Fund(ctx, b.ID, f.renter)
	require.NoError(t, err)
	return res.Booking
}

// inProgress takes a funded booking through Start.
func (f *fixture) inProgress(t *testing.T) *domain.Booking {
	t.Helper()
	b := f.funded(t)
	start, _ := f.otps(t, b.ID)
	b, err := f.bookings.Start(context.Background(), b.ID, f.owner, start)
	require.NoError(t, err)
	return b
}

func (f *fixture) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	bal, err := f.escrow.Balance(context.Background(), userID)
	require.NoError(t, err)
	return bal
}

func (f *fixture) booking(t *testing.T, id uuid.UUID) *domain.Booking {
	t.Helper()
	b, err := f.store.Repos().Bookings.GetByID(context.Background(), id, domain.ProjectionDefault)
	require.NoError(t, err)
	return b
}
