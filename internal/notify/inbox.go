package notify

import (
	"context"

	"farmshare-backend/internal/domain"

	"github.com/google/uuid"
)

type notificationWriter interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// Inbox stores an in-app notification row per status change.
type Inbox struct {
	notes notificationWriter
}

func NewInbox(notes notificationWriter) *Inbox {
	return &Inbox{notes: notes}
}

func (n *Inbox) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	return n.notes.Create(ctx, &domain.Notification{
		UserID:  recipient,
		Title:   "Booking " + string(status),
		Message: domain.StatusMessage(status),
		Attributes: map[string]string{
			"booking_id": bookingID.String(),
			"status":     string(status),
		},
	})
}
