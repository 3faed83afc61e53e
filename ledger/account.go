// Package ledger defines the entities moved around by the engine: accounts,
// transactions and the store contracts that own them.
package ledger

import (
	"time"

	"github.com/rustyeddy/ledger/money"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

// Account is a value snapshot. Stores hand out copies; the balance of the
// stored account only changes through AccountStore.ApplyMovement.
type Account struct {
	ID          string
	Name        string
	Currency    money.Currency
	Balance     decimal.Decimal
	Status      AccountStatus
	LastUpdated time.Time
}

// NewAccount returns an ACTIVE account with a zero balance.
func NewAccount(id, name string, c money.Currency, now time.Time) Account {
	return Account{
		ID:          id,
		Name:        name,
		Currency:    c,
		Balance:     decimal.Zero,
		Status:      AccountActive,
		LastUpdated: now,
	}
}

func (a Account) IsClosed() bool {
	return a.Status == AccountClosed
}

// Amount attaches v to the account's own currency.
func (a Account) Amount(v decimal.Decimal) money.Amount {
	return money.NewAmount(a.Currency, v)
}
