package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Rating       float64   `json:"rating"`
	TotalRatings int32     `json:"total_ratings"`
	CreatedAt    time.Time `json:"created_at"`
}
