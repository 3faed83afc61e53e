package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Finalizations record from many goroutines; one connection keeps
	// SQLite from answering "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO transactions
		(transaction_id, sender_id, receiver_id, amount_sent, currency_sent,
		 amount_received, currency_received, status, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TransactionID, t.SenderID, t.ReceiverID, t.AmountSent, t.CurrencySent,
		t.AmountReceived, t.CurrencyReceived, t.Status, t.Created.UTC(), t.Processed.UTC(),
	)
	return err
}

func (j *SQLite) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balances
		(time, account_id, transaction_id, currency, balance)
		VALUES (?, ?, ?, ?, ?)`,
		b.Time.UTC(), b.AccountID, b.TransactionID, b.Currency, b.Balance.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
