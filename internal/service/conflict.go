package service

import (
	"context"
	"fmt"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

// ConflictChecker answers whether a tractor is already booked for a window.
type ConflictChecker struct {
	bookings repository.BookingRepository
}

func NewConflictChecker(bookings repository.BookingRepository) *ConflictChecker {
	return &ConflictChecker{bookings: bookings}
}

// HasConflict reports whether an active booking of the tractor overlaps [start, end].
func (c *ConflictChecker) HasConflict(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
	}
	return c.bookings.HasActiveOverlap(ctx, tractorID, start, end)
}
