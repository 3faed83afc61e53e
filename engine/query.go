package engine

import (
	"github.com/rustyeddy/ledger/id"
	"github.com/rustyeddy/ledger/ledger"
)

// Query answers reads over the account and transaction stores.
type Query struct {
	accounts ledger.AccountStore
	txs      ledger.TransactionStore
}

func NewQuery(accounts ledger.AccountStore, txs ledger.TransactionStore) *Query {
	return &Query{accounts: accounts, txs: txs}
}

func (q *Query) Account(id string) (ledger.Account, error) {
	return q.accounts.Get(id)
}

// Accounts returns every account ordered by id.
func (q *Query) Accounts() []ledger.Account {
	return q.accounts.List()
}

func (q *Query) AccountIDs() []string {
	accts := q.accounts.List()
	ids := make([]string, 0, len(accts))
	for _, a := range accts {
		ids = append(ids, a.ID)
	}
	return ids
}

func (q *Query) Transaction(id string) (ledger.Transaction, error) {
	return q.txs.Get(id)
}

// AccountTransactions lists every transaction where accountID is sender or
// receiver, whatever its status.
func (q *Query) AccountTransactions(accountID string) ([]ledger.Transaction, error) {
	if _, err := q.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return q.txs.ListByAccount(accountID), nil
}

// NewAccountID returns a random UUID.
func (q *Query) NewAccountID() string { return id.NewUUID() }

// NewTransactionID returns a time-sortable ULID.
func (q *Query) NewTransactionID() string { return id.New() }
