package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the transaction audit journal",
	Long: `Query and display finalized transactions from the SQLite journal.

Subcommands:
  tx       - Get details of a specific transaction by ID
  account  - List every transaction touching an account
  day      - List transactions processed on a specific day

Examples:
  ledger journal tx 01HZX3Q8M6V4ZK9B1D2E3F4G5H
  ledger journal account 6f1c2b9e-2c7a-4a55-9d0e-1b2c3d4e5f60
  ledger journal day 2024-01-15`,
}

var journalTxCmd = &cobra.Command{
	Use:   "tx <transaction-id>",
	Short: "Get details of a specific transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTx,
}

var journalAccountCmd = &cobra.Command{
	Use:   "account <account-id>",
	Short: "List transactions and balance history of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalAccount,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List transactions processed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTxCmd)
	journalCmd.AddCommand(journalAccountCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./ledger.sqlite", "path to SQLite journal DB")
}

func runJournalTx(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTransaction(args[0])
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTransactionOrg(rec))
	return nil
}

func runJournalAccount(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTransactionsByAccount(args[0])
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	balances, err := j.ListBalances(args[0])
	if err != nil {
		return fmt.Errorf("query balances: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "* Account %s\n", args[0])
	fmt.Fprintln(out, journal.FormatTransactionsOrg(recs))
	if len(balances) > 0 {
		fmt.Fprintln(out, "** Balances")
		for _, b := range balances {
			fmt.Fprintf(out, "- %s %s %s (%s)\n", b.Time.UTC().Format(time.RFC3339), b.Balance, b.Currency, b.TransactionID)
		}
	}
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTransactionsProcessedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTransactionsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
