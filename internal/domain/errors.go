package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidState        = errors.New("invalid state")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrConflict            = errors.New("tractor is already booked for this time period")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrPaymentVerification = errors.New("payment verification failed")
)

// InsufficientFundsError carries the amounts involved in a failed debit.
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, have %d", e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall is the amount the wallet is missing.
func (e *InsufficientFundsError) Shortfall() int64 {
	return e.Required - e.Available
}
