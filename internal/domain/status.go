package domain

import "fmt"

// validPaymentStatuses lists, per booking status, the payment statuses a booking may hold.
var validPaymentStatuses = map[BookingStatus][]PaymentStatus{
	BookingStatusPending:    {PaymentStatusPending},
	BookingStatusAccepted:   {PaymentStatusPending, PaymentStatusHeld},
	BookingStatusInProgress: {PaymentStatusHeld},
	BookingStatusCompleted:  {PaymentStatusHeld, PaymentStatusReleased},
	BookingStatusRejected:   {PaymentStatusPending},
	BookingStatusCancelled:  {PaymentStatusPending, PaymentStatusHeld, PaymentStatusPaid, PaymentStatusRefunded},
}

// ValidStatusPair reports whether the (status, paymentStatus) combination is allowed.
func ValidStatusPair(status BookingStatus, payment PaymentStatus) bool {
	for _, p := range validPaymentStatuses[status] {
		if p == payment {
			return true
		}
	}
	return false
}

// CheckStatusPair returns ErrInvalidState when the pair is not in the table.
func CheckStatusPair(status BookingStatus, payment PaymentStatus) error {
	if !ValidStatusPair(status, payment) {
		return fmt.Errorf("%w: payment status %q is not allowed for booking status %q", ErrInvalidState, payment, status)
	}
	return nil
}
