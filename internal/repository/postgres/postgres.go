package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db    *sql.DB
	repos repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(db dbtx) repository.Repositories {
	return repository.Repositories{
		Users:         NewUserRepository(db),
		Tractors:      NewTractorRepository(db),
		Bookings:      NewBookingRepository(db),
		Wallets:       NewWalletRepository(db),
		Payments:      NewPaymentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func (s *Store) Repos() repository.Repositories {
	return s.repos
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", "error", err)
		return mapError(err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
	pqCheckViolation     = "23514"
)

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqExclusionViolation:
			return fmt.Errorf("%w (%s)", domain.ErrConflict, pqErr.Constraint)
		case pqUniqueViolation:
			return fmt.Errorf("%w (%s)", domain.ErrAlreadyProcessed, pqErr.Constraint)
		case pqCheckViolation:
			return fmt.Errorf("%w (%s)", domain.ErrInvalidState, pqErr.Constraint)
		}
	}
	return err
}

// expectOneRow returns ErrNotFound when an update touched nothing.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
