package postgres

import (
	"context"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

type walletRepository struct {
	db dbtx
}

func NewWalletRepository(db dbtx) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	query := `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

func (r *walletRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	now := time.Now().UTC()
	ensure := `INSERT INTO wallets (user_id, balance, created_at, updated_at) VALUES ($1, 0, $2, $2)
	           ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, ensure, userID, now); err != nil {
		return nil, mapError(err)
	}

	w := &domain.Wallet{}
	query := `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, userID uuid.UUID, balance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE user_id = $3`
	logger.DatabaseCall("UPDATE", "wallets", "userID", userID, "balance", balance)
	res, err := r.db.ExecContext(ctx, query, balance, time.Now().UTC(), userID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", userID)
		return mapError(err)
	}
	return expectOneRow(res)
}
