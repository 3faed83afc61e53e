// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	transactionHeader = []string{"transaction_id", "sender_id", "receiver_id", "amount_sent", "currency_sent", "amount_received", "currency_received", "status", "created_at", "processed_at"}
	balanceHeader     = []string{"time", "account_id", "transaction_id", "currency", "balance"}
)

// CSVJournal appends records to two CSV files. Writes are serialized, so
// concurrent finalizations may share one journal.
type CSVJournal struct {
	mu           sync.Mutex
	transactions *csv.Writer
	balances     *csv.Writer
	tf, bf       *os.File
}

var _ Journal = (*CSVJournal)(nil)

func NewCSV(transactionsPath, balancesPath string) (*CSVJournal, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	bf, err := os.Create(balancesPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	bw := csv.NewWriter(bf)

	for _, w := range []struct {
		w   *csv.Writer
		hdr []string
	}{{tw, transactionHeader}, {bw, balanceHeader}} {
		err := w.w.Write(w.hdr)
		if err == nil {
			w.w.Flush()
			err = w.w.Error()
		}
		if err != nil {
			_ = tf.Close()
			_ = bf.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return &CSVJournal{transactions: tw, balances: bw, tf: tf, bf: bf}, nil
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.transactions.Write([]string{
		t.TransactionID,
		t.SenderID,
		t.ReceiverID,
		nullable(t.AmountSent.Valid, t.AmountSent.Decimal.String()),
		t.CurrencySent,
		nullable(t.AmountReceived.Valid, t.AmountReceived.Decimal.String()),
		t.CurrencyReceived,
		t.Status,
		ts(t.Created),
		ts(t.Processed),
	})
	if err != nil {
		return err
	}
	j.transactions.Flush()
	return j.transactions.Error()
}

func (j *CSVJournal) RecordBalance(b BalanceSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.balances.Write([]string{
		ts(b.Time),
		b.AccountID,
		b.TransactionID,
		b.Currency,
		b.Balance.String(),
	})
	if err != nil {
		return err
	}
	j.balances.Flush()
	return j.balances.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.transactions.Flush()
	if err := j.transactions.Error(); err != nil {
		return err
	}
	j.balances.Flush()
	if err := j.balances.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.bf.Close()
}

func nullable(valid bool, s string) string {
	if !valid {
		return ""
	}
	return s
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
