package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/money"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusAborted   TransactionStatus = "ABORTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

type Direction string

const (
	DirectionSender   Direction = "SENDER"
	DirectionReceiver Direction = "RECEIVER"
)

// Transaction records one movement. An empty SenderID marks a deposit and an
// empty ReceiverID a withdrawal; AmountSent/AmountReceived mirror them.
type Transaction struct {
	ID             string
	SenderID       string
	ReceiverID     string
	AmountSent     *money.Amount
	AmountReceived *money.Amount
	Created        time.Time
	Processed      time.Time
	Status         TransactionStatus
}

// NewTransaction builds a PENDING transaction and checks its shape.
func NewTransaction(id, senderID, receiverID string, sent, received *money.Amount, created time.Time) (Transaction, error) {
	tx := Transaction{
		ID:             id,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		AmountSent:     sent,
		AmountReceived: received,
		Created:        created,
		Status:         StatusPending,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (t Transaction) HasSender() bool   { return t.SenderID != "" }
func (t Transaction) HasReceiver() bool { return t.ReceiverID != "" }

func (t Transaction) IsDeposit() bool    { return !t.HasSender() && t.HasReceiver() }
func (t Transaction) IsWithdrawal() bool { return t.HasSender() && !t.HasReceiver() }

// Validate checks the optional-pair contract: at least one party, and each
// amount present exactly when its party is.
func (t Transaction) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: transaction id is empty", ErrValidation)
	case !t.HasSender() && !t.HasReceiver():
		return fmt.Errorf("%w: senderId and/or receiverId must be set", ErrValidation)
	case t.HasSender() && t.AmountSent == nil:
		return fmt.Errorf("%w: senderId is set, but amountSent is not", ErrValidation)
	case !t.HasSender() && t.AmountSent != nil:
		return fmt.Errorf("%w: senderId is not set, but amountSent is", ErrValidation)
	case t.HasReceiver() && t.AmountReceived == nil:
		return fmt.Errorf("%w: receiverId is set, but amountReceived is not", ErrValidation)
	case !t.HasReceiver() && t.AmountReceived != nil:
		return fmt.Errorf("%w: receiverId is not set, but amountReceived is", ErrValidation)
	}
	return nil
}

// Kind names the movement: deposit, withdrawal or transfer.
func (t Transaction) Kind() string {
	switch {
	case t.IsDeposit():
		return "deposit"
	case t.IsWithdrawal():
		return "withdrawal"
	default:
		return "transfer"
	}
}

// DirectionFor returns the role accountID plays in t and the amount seen
// from that side.
func (t Transaction) DirectionFor(accountID string) (Direction, money.Amount, error) {
	switch {
	case t.HasSender() && t.SenderID == accountID:
		return DirectionSender, *t.AmountSent, nil
	case t.HasReceiver() && t.ReceiverID == accountID:
		return DirectionReceiver, *t.AmountReceived, nil
	}
	return "", money.Amount{}, fmt.Errorf("account %q is neither sender nor receiver of transaction %q", accountID, t.ID)
}

// finalize moves a PENDING transaction to a terminal status.
func (t *Transaction) finalize(status TransactionStatus, at time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %q is %s", ErrAlreadyFinalized, t.ID, t.Status)
	}
	t.Status = status
	t.Processed = at
	return nil
}

func (t *Transaction) Complete(at time.Time) error {
	return t.finalize(StatusCompleted, at)
}

func (t *Transaction) Abort(at time.Time) error {
	return t.finalize(StatusAborted, at)
}
