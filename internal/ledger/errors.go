package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when the account id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when the transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlreadyConfirmed is returned when confirming a purchase that was
	// already confirmed. Confirmation is idempotent on the transaction id.
	ErrAlreadyConfirmed = errors.New("purchase already confirmed")

	// ErrTransactionPending is returned when reversing a pending purchase.
	ErrTransactionPending = errors.New("transaction is pending and cannot be reversed")

	// ErrNonPositiveAmount is returned for credit/debit amounts <= 0.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// InsufficientTokensError is returned when a debit would take the
// balance below zero.
type InsufficientTokensError struct {
	Required  int
	Available int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: need %d, have %d", e.Required, e.Available)
}
