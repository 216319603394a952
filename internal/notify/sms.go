package notify

import (
	"context"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/google/uuid"
)

// LogSMS writes the SMS a user would receive to the log instead of sending it.
type LogSMS struct {
	users UserLookup
}

func NewLogSMS(users UserLookup) *LogSMS {
	return &LogSMS{users: users}
}

func (n *LogSMS) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	phone := ""
	if u, err := n.users.GetByID(ctx, recipient); err == nil {
		phone = u.PhoneNumber
	}
	logger.InfoContext(ctx, "SMS (dev mode)", "to", phone, "recipient", recipient, "message", FormatStatusSMS(bookingID, status))
	return nil
}
