// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
)

// TransactionRecord is the audit row written when a transaction is finalized.
// Absent parties are empty strings and their amounts are NULL.
type TransactionRecord struct {
	TransactionID    string
	SenderID         string
	ReceiverID       string
	AmountSent       decimal.NullDecimal
	CurrencySent     string
	AmountReceived   decimal.NullDecimal
	CurrencyReceived string
	Status           string
	Created          time.Time
	Processed        time.Time
}

// BalanceSnapshot is an account balance right after a completed movement.
type BalanceSnapshot struct {
	Time          time.Time
	AccountID     string
	TransactionID string
	Currency      string
	Balance       decimal.Decimal
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// FromTransaction flattens tx into a TransactionRecord.
func FromTransaction(tx ledger.Transaction) TransactionRecord {
	rec := TransactionRecord{
		TransactionID: tx.ID,
		SenderID:      tx.SenderID,
		ReceiverID:    tx.ReceiverID,
		Status:        string(tx.Status),
		Created:       tx.Created,
		Processed:     tx.Processed,
	}
	if tx.AmountSent != nil {
		rec.AmountSent = decimal.NewNullDecimal(tx.AmountSent.Value)
		rec.CurrencySent = tx.AmountSent.Currency.String()
	}
	if tx.AmountReceived != nil {
		rec.AmountReceived = decimal.NewNullDecimal(tx.AmountReceived.Value)
		rec.CurrencyReceived = tx.AmountReceived.Currency.String()
	}
	return rec
}

// SnapshotOf records a's balance as left by transaction txID.
func SnapshotOf(a ledger.Account, txID string) BalanceSnapshot {
	return BalanceSnapshot{
		Time:          a.LastUpdated,
		AccountID:     a.ID,
		TransactionID: txID,
		Currency:      a.Currency.String(),
		Balance:       a.Balance,
	}
}

// Discard is a Journal that drops everything.
type Discard struct{}

func (Discard) RecordTransaction(TransactionRecord) error { return nil }
func (Discard) RecordBalance(BalanceSnapshot) error       { return nil }
func (Discard) Close() error                              { return nil }
