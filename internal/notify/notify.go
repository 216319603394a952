// Package notify delivers booking status changes to users. Every notifier is
// best-effort; callers log failures and move on.
package notify

import (
	"context"
	"errors"
	"fmt"

	"farmshare-backend/internal/domain"

	"github.com/google/uuid"
)

// UserLookup resolves contact details for a recipient.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Notifier interface {
	NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error
}

// FormatStatusSMS renders the short message sent for a status change.
func FormatStatusSMS(bookingID uuid.UUID, status domain.BookingStatus) string {
	return fmt.Sprintf("FarmShare Update: %s (ID: %s)", domain.StatusMessage(status), bookingID)
}

// Multi fans a notification out to every wrapped notifier.
type Multi []Notifier

func (m Multi) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyStatusChange(ctx, recipient, bookingID, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
