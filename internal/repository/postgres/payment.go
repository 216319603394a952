package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

type paymentRepository struct {
	db dbtx
}

func NewPaymentRepository(db dbtx) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, user_id, booking_id, type, amount, status, previous_balance, new_balance,
	description, COALESCE(gateway_order_id, ''), COALESCE(gateway_payment_id, ''), error_message,
	failure_reason, metadata, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	p := &domain.PaymentRecord{}
	var meta []byte
	err := row.Scan(&p.ID, &p.UserID, &p.BookingID, &p.Type, &p.Amount, &p.Status, &p.PreviousBalance, &p.NewBalance,
		&p.Description, &p.GatewayOrderID, &p.GatewayPaymentID, &p.ErrorMessage,
		&p.FailureReason, &meta, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &p.Metadata); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	logger.EnterMethod("paymentRepository.Create", "userID", p.UserID, "type", p.Type, "amount", p.Amount)

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	meta, err := json.Marshal(p.Metadata)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err, "reason", "failed to marshal metadata")
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `INSERT INTO payment_records (id, user_id, booking_id, type, amount, status, previous_balance, new_balance,
	          description, gateway_order_id, gateway_payment_id, error_message, failure_reason, metadata, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	logger.DatabaseCall("INSERT", "payment_records", "paymentID", p.ID)
	_, err = r.db.ExecContext(ctx, query, p.ID, p.UserID, p.BookingID, p.Type, p.Amount, p.Status, p.PreviousBalance, p.NewBalance,
		p.Description, nullString(p.GatewayOrderID), nullString(p.GatewayPaymentID), p.ErrorMessage, p.FailureReason, meta,
		p.CreatedAt, p.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "paymentID", p.ID)

	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err, "paymentID", p.ID)
		return mapError(err)
	}
	logger.ExitMethod("paymentRepository.Create", "paymentID", p.ID)
	return nil
}

func (r *paymentRepository) GetByGatewayOrderForUpdate(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE gateway_order_id = $1 FOR UPDATE`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// Update writes the mutable fields of a record that has not reached a terminal status.
func (r *paymentRepository) Update(ctx context.Context, p *domain.PaymentRecord) error {
	meta, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE payment_records SET status=$1, previous_balance=$2, new_balance=$3, gateway_payment_id=$4,
	          error_message=$5, failure_reason=$6, metadata=$7, updated_at=$8
	          WHERE id=$9 AND status IN ('pending', 'processing')`
	res, err := r.db.ExecContext(ctx, query, p.Status, p.PreviousBalance, p.NewBalance, nullString(p.GatewayPaymentID),
		p.ErrorMessage, p.FailureReason, meta, p.UpdatedAt, p.ID)
	if err != nil {
		return mapError(err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("%w: payment %s is no longer pending", domain.ErrAlreadyProcessed, p.ID)
	}
	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	argIdx := 2
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE ` + strings.Join(where, " AND ") +
		" ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records WHERE booking_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *paymentRepository) TotalsByType(ctx context.Context, userID uuid.UUID) (map[domain.PaymentType]int64, error) {
	query := `SELECT type, COALESCE(SUM(amount), 0) FROM payment_records
	          WHERE user_id = $1 AND status = 'completed' GROUP BY type`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[domain.PaymentType]int64)
	for rows.Next() {
		var t domain.PaymentType
		var sum int64
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, err
		}
		totals[t] = sum
	}
	return totals, rows.Err()
}

func (r *paymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records
	          WHERE type = 'wallet_credit' AND status = 'pending' AND created_at < $1
	          ORDER BY created_at LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]domain.PaymentRecord, error) {
	defer rows.Close()
	var records []domain.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}
