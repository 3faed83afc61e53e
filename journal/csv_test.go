package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	balPath := filepath.Join(dir, "balances.csv")

	j, err := NewCSV(txPath, balPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, [][]string{transactionHeader}, readCSV(t, txPath))
	assert.Equal(t, [][]string{balanceHeader}, readCSV(t, balPath))
}

func TestCSVJournalRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	balPath := filepath.Join(dir, "balances.csv")

	j, err := NewCSV(txPath, balPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordTransaction(transferRecord("T1", "a", "b", "40", ledger.StatusCompleted)))

	acct := ledger.NewAccount("b", "Bob", "EUR", processed)
	acct.Balance = decimal.NewFromInt(40)
	require.NoError(t, j.RecordBalance(SnapshotOf(acct, "T1")))
	require.NoError(t, j.Close())

	rows := readCSV(t, txPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"T1", "a", "b", "40", "EUR", "40", "EUR", "COMPLETED",
		"2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z",
	}, rows[1])

	rows = readCSV(t, balPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-02T03:04:06Z", "b", "T1", "EUR", "40"}, rows[1])
}

func TestDiscard(t *testing.T) {
	var j Journal = Discard{}
	assert.NoError(t, j.RecordTransaction(TransactionRecord{}))
	assert.NoError(t, j.RecordBalance(BalanceSnapshot{}))
	assert.NoError(t, j.Close())
}

func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(entries)
}

func TestCSVJournalHeaderFailureClosesFiles(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("/proc/self/fd not available")
	}

	txPath := filepath.Join(t.TempDir(), "transactions.csv")

	before := openFDs(t)
	_, err := NewCSV(txPath, "/dev/full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write header")
	assert.Equal(t, before, openFDs(t))
}
