package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentTypeWalletCredit   PaymentType = "wallet_credit"
	PaymentTypeBookingPayment PaymentType = "booking_payment"
	PaymentTypeBookingRefund  PaymentType = "booking_refund"
	PaymentTypeOwnerPayout    PaymentType = "owner_payout"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeWalletCredit, PaymentTypeBookingPayment, PaymentTypeBookingRefund, PaymentTypeOwnerPayout:
		return true
	}
	return false
}

type PaymentRecordStatus string

const (
	PaymentRecordPending    PaymentRecordStatus = "pending"
	PaymentRecordProcessing PaymentRecordStatus = "processing"
	PaymentRecordCompleted  PaymentRecordStatus = "completed"
	PaymentRecordFailed     PaymentRecordStatus = "failed"
	PaymentRecordRefunded   PaymentRecordStatus = "refunded"
)

func (s PaymentRecordStatus) Valid() bool {
	switch s {
	case PaymentRecordPending, PaymentRecordProcessing, PaymentRecordCompleted, PaymentRecordFailed, PaymentRecordRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether the record can no longer change status.
func (s PaymentRecordStatus) IsTerminal() bool {
	return s == PaymentRecordCompleted || s == PaymentRecordFailed || s == PaymentRecordRefunded
}

// PaymentRecord is an append-only audit entry for one money movement.
type PaymentRecord struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"user_id"`
	BookingID        *uuid.UUID          `json:"booking_id,omitempty"`
	Type             PaymentType         `json:"type"`
	Amount           int64               `json:"amount"`
	Status           PaymentRecordStatus `json:"status"`
	PreviousBalance  int64               `json:"previous_balance"`
	NewBalance       int64               `json:"new_balance"`
	Description      string              `json:"description"`
	GatewayOrderID   string              `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string              `json:"gateway_payment_id,omitempty"`
	ErrorMessage     string              `json:"error_message,omitempty"`
	FailureReason    string              `json:"failure_reason,omitempty"`
	Metadata         map[string]string   `json:"metadata,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type PaymentFilter struct {
	Type   PaymentType
	Status PaymentRecordStatus
	Limit  int32
}

// WalletSummary aggregates a user's completed money movements.
type WalletSummary struct {
	Balance        int64           `json:"balance"`
	TotalCredits   int64           `json:"total_credits"`
	TotalDebits    int64           `json:"total_debits"`
	TotalRefunds   int64           `json:"total_refunds"`
	TotalEarnings  int64           `json:"total_earnings"`
	RecentPayments []PaymentRecord `json:"recent_payments"`
}

// ShortID is the trailing six characters of an id, used in record descriptions.
func ShortID(id uuid.UUID) string {
	s := id.String()
	return s[len(s)-6:]
}

// PaymentProof is what the client returns after completing a gateway checkout.
type PaymentProof struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}
