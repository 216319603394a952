package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type bookingRepository struct {
	db dbtx
}

func NewBookingRepository(db dbtx) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumnsHead = `id, renter_id, owner_id, tractor_id, start_time, end_time, duration_hours,
	actual_start_time, actual_end_time, work_type, acres, work_description, farm_address, notes,
	total_amount, platform_fee, owner_earnings, status, payment_status`

const bookingColumnsTail = `cancellation_reason, cancelled_by, cancelled_at,
	farmer_rating, farmer_review, owner_rating, owner_review, created_at, updated_at`

// bookingColumns builds the select list; OTP columns are blanked unless asked for.
func bookingColumns(proj domain.BookingProjection) string {
	otps := `'' AS start_otp, '' AS end_otp`
	if proj.IncludeOTPs {
		otps = `start_otp, end_otp`
	}
	return bookingColumnsHead + ", " + otps + ", " + bookingColumnsTail
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.RenterID, &b.OwnerID, &b.TractorID, &b.StartTime, &b.EndTime, &b.DurationHours,
		&b.ActualStartTime, &b.ActualEndTime, &b.WorkType, &b.Acres, &b.WorkDescription, &b.FarmAddress, &b.Notes,
		&b.TotalAmount, &b.PlatformFee, &b.OwnerEarnings, &b.Status, &b.PaymentStatus,
		&b.StartOTP, &b.EndOTP,
		&b.CancellationReason, &b.CancelledBy, &b.CancelledAt,
		&b.Ratings.FarmerRating, &b.Ratings.FarmerReview, &b.Ratings.OwnerRating, &b.Ratings.OwnerReview,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	query := `INSERT INTO bookings (id, renter_id, owner_id, tractor_id, start_time, end_time, duration_hours,
	          work_type, acres, work_description, farm_address, notes, total_amount, platform_fee, owner_earnings,
	          status, payment_status, start_otp, end_otp, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	logger.DatabaseCall("INSERT", "bookings", "bookingID", b.ID, "tractorID", b.TractorID)
	_, err := r.db.ExecContext(ctx, query, b.ID, b.RenterID, b.OwnerID, b.TractorID, b.StartTime, b.EndTime, b.DurationHours,
		b.WorkType, b.Acres, b.WorkDescription, b.FarmAddress, b.Notes, b.TotalAmount, b.PlatformFee, b.OwnerEarnings,
		b.Status, b.PaymentStatus, b.StartOTP, b.EndOTP, b.CreatedAt, b.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	return mapError(err)
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns(proj) + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns(domain.ProjectionWithOTPs) + ` FROM bookings WHERE id = $1 FOR UPDATE`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	b.UpdatedAt = time.Now().UTC()
	query := `UPDATE bookings SET status=$1, payment_status=$2, actual_start_time=$3, actual_end_time=$4,
	          cancellation_reason=$5, cancelled_by=$6, cancelled_at=$7,
	          farmer_rating=$8, farmer_review=$9, owner_rating=$10, owner_review=$11, updated_at=$12
	          WHERE id=$13`
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "status", b.Status, "paymentStatus", b.PaymentStatus)
	res, err := r.db.ExecContext(ctx, query, b.Status, b.PaymentStatus, b.ActualStartTime, b.ActualEndTime,
		b.CancellationReason, b.CancelledBy, b.CancelledAt,
		b.Ratings.FarmerRating, b.Ratings.FarmerReview, b.Ratings.OwnerRating, b.Ratings.OwnerReview, b.UpdatedAt,
		b.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", b.ID)
		return mapError(err)
	}
	return expectOneRow(res)
}

func (r *bookingRepository) LockTractorSchedule(ctx context.Context, tractorID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tractorID.String())
	return err
}

func (r *bookingRepository) HasActiveOverlap(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error) {
	statuses := make([]string, len(domain.ActiveBookingStatuses))
	for i, s := range domain.ActiveBookingStatuses {
		statuses[i] = string(s)
	}
	query := `SELECT EXISTS (
	            SELECT 1 FROM bookings
	            WHERE tractor_id = $1 AND status = ANY($2) AND start_time <= $3 AND end_time >= $4)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, tractorID, pq.Array(statuses), end, start).Scan(&exists)
	return exists, err
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	var where []string
	switch filter.Role {
	case domain.BookingRoleRenter:
		where = append(where, "renter_id = $1")
	case domain.BookingRoleOwner:
		where = append(where, "owner_id = $1")
	default:
		where = append(where, "(renter_id = $1 OR owner_id = $1)")
	}
	args := []any{userID}
	argIdx := 2
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	cond := strings.Join(where, " AND ")

	var count int32
	err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM bookings WHERE "+cond, args...).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query := `SELECT ` + bookingColumns(domain.ProjectionDefault) + ` FROM bookings WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListPendingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns(domain.ProjectionDefault) + ` FROM bookings
	          WHERE (status = 'completed' AND payment_status = 'held')
	             OR (status = 'cancelled' AND payment_status IN ('held', 'paid'))
	          ORDER BY updated_at LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
