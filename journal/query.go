package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, sender_id, receiver_id, amount_sent, currency_sent,
	amount_received, currency_received, status, created_at, processed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (TransactionRecord, error) {
	var rec TransactionRecord
	err := row.Scan(
		&rec.TransactionID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.AmountSent,
		&rec.CurrencySent,
		&rec.AmountReceived,
		&rec.CurrencyReceived,
		&rec.Status,
		&rec.Created,
		&rec.Processed,
	)
	return rec, err
}

// GetTransaction returns a single finalized transaction by ID.
func (j *SQLite) GetTransaction(id string) (TransactionRecord, error) {
	row := j.db.QueryRow(`SELECT `+transactionColumns+`
		FROM transactions
		WHERE transaction_id = ?`, id)

	rec, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TransactionRecord{}, fmt.Errorf("%w: %q", ledger.ErrTransactionNotFound, id)
		}
		return TransactionRecord{}, err
	}
	return rec, nil
}

// ListTransactionsByAccount returns every journaled transaction where the
// account is sender or receiver, oldest first.
func (j *SQLite) ListTransactionsByAccount(accountID string) ([]TransactionRecord, error) {
	return j.queryTransactions(`SELECT `+transactionColumns+`
		FROM transactions
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY created_at ASC, transaction_id ASC`, accountID, accountID)
}

// ListTransactionsProcessedBetween returns transactions whose processed_at
// is within [start, end).
func (j *SQLite) ListTransactionsProcessedBetween(start, end time.Time) ([]TransactionRecord, error) {
	return j.queryTransactions(`SELECT `+transactionColumns+`
		FROM transactions
		WHERE processed_at >= ? AND processed_at < ?
		ORDER BY processed_at ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) queryTransactions(query string, args ...any) ([]TransactionRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBalances returns the balance history of an account, oldest first.
func (j *SQLite) ListBalances(accountID string) ([]BalanceSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, account_id, transaction_id, currency, balance
		FROM balances
		WHERE account_id = ?
		ORDER BY time ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceSnapshot
	for rows.Next() {
		var (
			b   BalanceSnapshot
			bal string
		)
		if err := rows.Scan(&b.Time, &b.AccountID, &b.TransactionID, &b.Currency, &bal); err != nil {
			return nil, err
		}
		if b.Balance, err = decimal.NewFromString(bal); err != nil {
			return nil, fmt.Errorf("balance %q: %w", bal, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
