package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app inbox entry.
type Notification struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

// StatusMessage is the renter-facing text for a booking status change.
func StatusMessage(status BookingStatus) string {
	switch status {
	case BookingStatusPending:
		return "You have a new booking request."
	case BookingStatusAccepted:
		return "Your booking has been accepted by the owner!"
	case BookingStatusRejected:
		return "Your booking request was declined. Please try another tractor."
	case BookingStatusInProgress:
		return "Your booking is now in progress. Safe farming!"
	case BookingStatusCompleted:
		return "Your booking is completed. Please rate your experience."
	case BookingStatusCancelled:
		return "Your booking has been cancelled."
	}
	return "Your booking status is now " + string(status) + "."
}
