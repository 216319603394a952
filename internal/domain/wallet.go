package domain

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Debit removes amount from the wallet or returns an *InsufficientFundsError.
func (w *Wallet) Debit(amount int64) error {
	if amount > w.Balance {
		return &InsufficientFundsError{Required: amount, Available: w.Balance}
	}
	w.Balance -= amount
	return nil
}

func (w *Wallet) Credit(amount int64) {
	w.Balance += amount
}
