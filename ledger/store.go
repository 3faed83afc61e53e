package ledger

import "time"

// AccountStore owns account balances. ApplyMovement is the only way a
// balance changes and must be atomic with respect to any other apply that
// touches the same account.
type AccountStore interface {
	Get(id string) (Account, error)
	List() []Account
	Create(a Account) error
	Rename(id, name string) (Account, error)
	Close(id string) (Account, error)

	// ApplyMovement debits the sender and credits the receiver of tx, or
	// changes nothing and returns ErrInsufficientBalance. It returns the
	// post-movement snapshots of the accounts it mutated.
	ApplyMovement(tx Transaction) ([]Account, error)
}

// TransactionStore owns transaction records.
type TransactionStore interface {
	Get(id string) (Transaction, error)
	ListByAccount(accountID string) []Transaction
	Create(tx Transaction) error
	MarkCompleted(id string, at time.Time) (Transaction, error)
	MarkAborted(id string, at time.Time) (Transaction, error)
}
