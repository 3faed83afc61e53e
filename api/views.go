package api

import (
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/money"
	"github.com/shopspring/decimal"
)

type AccountView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

func accountView(a ledger.Account) AccountView {
	return AccountView{
		ID:          a.ID,
		Name:        a.Name,
		Currency:    a.Currency.String(),
		Balance:     a.Balance,
		Status:      string(a.Status),
		LastUpdated: a.LastUpdated,
	}
}

type AmountView struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func amountView(a *money.Amount) *AmountView {
	if a == nil {
		return nil
	}
	return &AmountView{Currency: a.Currency.String(), Amount: a.Value}
}

type TransactionView struct {
	ID                string      `json:"id"`
	SenderID          string      `json:"senderId,omitempty"`
	ReceiverID        string      `json:"receiverId,omitempty"`
	Status            string      `json:"status"`
	AmountSent        *AmountView `json:"amountSent,omitempty"`
	AmountReceived    *AmountView `json:"amountReceived,omitempty"`
	DateTime          time.Time   `json:"dateTime"`
	ProcessedDateTime *time.Time  `json:"processedDateTime,omitempty"`
}

func transactionView(tx ledger.Transaction) TransactionView {
	v := TransactionView{
		ID:             tx.ID,
		SenderID:       tx.SenderID,
		ReceiverID:     tx.ReceiverID,
		Status:         string(tx.Status),
		AmountSent:     amountView(tx.AmountSent),
		AmountReceived: amountView(tx.AmountReceived),
		DateTime:       tx.Created,
	}
	if !tx.Processed.IsZero() {
		p := tx.Processed
		v.ProcessedDateTime = &p
	}
	return v
}

// AccountTransactionView is a transaction seen from one of its accounts.
type AccountTransactionView struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	SenderID   string          `json:"senderId,omitempty"`
	ReceiverID string          `json:"receiverId,omitempty"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	DateTime   time.Time       `json:"dateTime"`
}

func accountTransactionView(accountID string, tx ledger.Transaction) (AccountTransactionView, error) {
	dir, amt, err := tx.DirectionFor(accountID)
	if err != nil {
		return AccountTransactionView{}, err
	}
	return AccountTransactionView{
		ID:         tx.ID,
		Status:     string(tx.Status),
		SenderID:   tx.SenderID,
		ReceiverID: tx.ReceiverID,
		Direction:  string(dir),
		Amount:     amt.Value,
		Currency:   amt.Currency.String(),
		DateTime:   tx.Created,
	}, nil
}
