package domain

import (
	"time"

	"github.com/google/uuid"
)

type Tractor struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	HourlyRate    int64     `json:"hourly_rate"`
	IsActive      bool      `json:"is_active"`
	Rating        float64   `json:"rating"`
	TotalRatings  int32     `json:"total_ratings"`
	TotalBookings int32     `json:"total_bookings"`
	CreatedAt     time.Time `json:"created_at"`
}

// NextAverage folds a new rating into a running average.
func NextAverage(avg float64, count int32, rating int) float64 {
	return (avg*float64(count) + float64(rating)) / float64(count+1)
}
