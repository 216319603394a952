package postgres_test

import (
	"context"
	"testing"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRowColumns = []string{"id", "user_id", "booking_id", "type", "amount", "status", "previous_balance", "new_balance",
	"description", "gateway_order_id", "gateway_payment_id", "error_message", "failure_reason", "metadata", "created_at", "updated_at"}

func TestPaymentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		bookingID := uuid.New()
		p := &domain.PaymentRecord{
			UserID:          uuid.New(),
			BookingID:       &bookingID,
			Type:            domain.PaymentTypeBookingPayment,
			Amount:          4000,
			Status:          domain.PaymentRecordCompleted,
			PreviousBalance: 5000,
			NewBalance:      1000,
			Description:     "Payment for booking #abcdef",
		}

		mock.ExpectExec("INSERT INTO payment_records").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, p))
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	t.Run("Duplicate gateway order", func(t *testing.T) {
		p := &domain.PaymentRecord{UserID: uuid.New(), Type: domain.PaymentTypeWalletCredit, GatewayOrderID: "order_1"}

		mock.ExpectExec("INSERT INTO payment_records").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "payment_records_gateway_order_id_key"})

		err := repo.Create(ctx, p)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})
}

func TestPaymentRepository_GetByGatewayOrderForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	id, user := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM payment_records WHERE gateway_order_id = \$1 FOR UPDATE`).
		WithArgs("order_42").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
			id.String(), user.String(), nil, "wallet_credit", int64(50000), "pending", int64(0), int64(0),
			"Wallet top-up", "order_42", "", "", "", []byte(`{"receipt":"wallet_1"}`), now, now))

	p, err := repo.GetByGatewayOrderForUpdate(context.Background(), "order_42")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Nil(t, p.BookingID)
	assert.Equal(t, domain.PaymentRecordPending, p.Status)
	assert.Equal(t, "wallet_1", p.Metadata["receipt"])
}

func TestPaymentRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()
	p := &domain.PaymentRecord{ID: uuid.New(), Status: domain.PaymentRecordCompleted, NewBalance: 100}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_records SET(.+)status IN \('pending', 'processing'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, p))
	})

	t.Run("Terminal record", func(t *testing.T) {
		mock.ExpectExec("UPDATE payment_records SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(ctx, p), domain.ErrAlreadyProcessed)
	})
}

func TestPaymentRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	user := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`WHERE user_id = \$1 AND type = \$2 AND status = \$3 ORDER BY created_at DESC LIMIT \$4`).
		WithArgs(user, domain.PaymentTypeOwnerPayout, domain.PaymentRecordCompleted, int32(50)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
			uuid.New().String(), user.String(), uuid.New().String(), "owner_payout", int64(3400), "completed", int64(0), int64(3400),
			"Earnings from booking #abcdef", "", "", "", "", []byte("null"), now, now))

	records, err := repo.ListByUser(context.Background(), user, domain.PaymentFilter{
		Type: domain.PaymentTypeOwnerPayout, Status: domain.PaymentRecordCompleted, Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_TotalsByType(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	user := uuid.New()

	mock.ExpectQuery(`SELECT type, COALESCE\(SUM\(amount\), 0\) FROM payment_records`).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"type", "sum"}).
			AddRow("wallet_credit", int64(100000)).
			AddRow("booking_payment", int64(4000)))

	totals, err := repo.TotalsByType(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), totals[domain.PaymentTypeWalletCredit])
	assert.Equal(t, int64(4000), totals[domain.PaymentTypeBookingPayment])
	assert.Zero(t, totals[domain.PaymentTypeOwnerPayout])
}
