package postgres

import (
	"context"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

type tractorRepository struct {
	db dbtx
}

func NewTractorRepository(db dbtx) repository.TractorRepository {
	return &tractorRepository{db: db}
}

func (r *tractorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tractor, error) {
	t := &domain.Tractor{}
	query := `SELECT id, owner_id, name, hourly_rate, is_active, rating, total_ratings, total_bookings, created_at
	          FROM tractors WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.HourlyRate, &t.IsActive,
		&t.Rating, &t.TotalRatings, &t.TotalBookings, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *tractorRepository) RecordRating(ctx context.Context, id uuid.UUID, rating int) error {
	query := `UPDATE tractors SET rating = (rating * total_ratings + $1) / (total_ratings + 1),
	          total_ratings = total_ratings + 1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *tractorRepository) IncrementBookings(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tractors SET total_bookings = total_bookings + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
