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

func TestWalletRepository_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)
	user := uuid.New()
	now := time.Now()

	mock.ExpectExec(`INSERT INTO wallets(.+)ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs(user, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "created_at", "updated_at"}).
			AddRow(user.String(), int64(2500), now, now))

	w, err := repo.GetForUpdate(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), w.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)

	mock.ExpectQuery("FROM wallets WHERE user_id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "created_at", "updated_at"}))

	_, err = repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalletRepository_UpdateBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)
	ctx := context.Background()
	user := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE wallets SET balance").
			WithArgs(int64(900), sqlmock.AnyArg(), user).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.UpdateBalance(ctx, user, 900))
	})

	t.Run("Negative balance rejected by constraint", func(t *testing.T) {
		mock.ExpectExec("UPDATE wallets SET balance").
			WillReturnError(&pq.Error{Code: "23514", Constraint: "wallets_balance_check"})
		assert.ErrorIs(t, repo.UpdateBalance(ctx, user, -1), domain.ErrInvalidState)
	})
}
