package postgres

import (
	"context"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	db dbtx
}

func NewUserRepository(db dbtx) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, phone_number, rating, total_ratings, created_at FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.Rating, &u.TotalRatings, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) RecordRating(ctx context.Context, id uuid.UUID, rating int) error {
	query := `UPDATE users SET rating = (rating * total_ratings + $1) / (total_ratings + 1),
	          total_ratings = total_ratings + 1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
