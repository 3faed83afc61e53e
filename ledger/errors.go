package ledger

import "errors"

var (
	// ErrValidation marks a malformed or contradictory request.
	ErrValidation = errors.New("validation failed")

	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInsufficientBalance is reported by an atomic apply when the sender
	// cannot cover the debit. It never escapes Submit; it becomes ABORTED.
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrDuplicateID      = errors.New("duplicate id")
	ErrAlreadyFinalized = errors.New("transaction already finalized")
	ErrAccountClosed    = errors.New("account closed")
)

// IsNotFound reports whether err means an unknown account or transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrTransactionNotFound)
}
