package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/engine"
	"github.com/rustyeddy/ledger/logging"
	"github.com/rustyeddy/ledger/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the deposit/transfer/withdraw walkthrough",
	Long: `Runs a scripted session against an in-process ledger:

  1. Create EUR accounts A and B
  2. Deposit 100 into A                -> COMPLETED
  3. Transfer 150 from A to B          -> ABORTED, balances unchanged
  4. Transfer 40 from A to B           -> COMPLETED, A=60 B=40
  5. Withdraw 1000 from A              -> ABORTED
  6. Print balances and the total held
  7. List every transaction touching A

Pass --db to also write the audit journal to SQLite.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var (
	demoDBPath  string
	demoVerbose bool
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVarP(&demoDBPath, "db", "d", "", "optional SQLite journal path")
	demoCmd.Flags().BoolVarP(&demoVerbose, "verbose", "v", false, "log engine activity to stderr")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Log.Format = "console"
	if demoDBPath != "" {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: demoDBPath}
	}

	log := zap.NewNop()
	if demoVerbose {
		var err error
		if log, err = logging.New(cfg.Log); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	e, j, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer j.Close()

	return demo(cmd.Context(), e, cmd.OutOrStdout())
}

func demo(ctx context.Context, e *engine.Engine, out io.Writer) error {
	q := e.Query()
	a, b := q.NewAccountID(), q.NewAccountID()

	if _, err := e.CreateAccount(ctx, a, "A", "EUR"); err != nil {
		return err
	}
	if _, err := e.CreateAccount(ctx, b, "B", "EUR"); err != nil {
		return err
	}
	fmt.Fprintf(out, "Accounts: A=%s B=%s\n\n", a, b)

	transfer := func(v int64) engine.Movement {
		amt := decimal.NewFromInt(v)
		return engine.Movement{
			TransactionID:  q.NewTransactionID(),
			SenderID:       a,
			ReceiverID:     b,
			AmountSent:     &amt,
			AmountReceived: &amt,
		}
	}

	steps := []struct {
		label  string
		submit func() (string, error)
	}{
		{"Deposit 100 into A", func() (string, error) {
			tx, err := e.Deposit(ctx, q.NewTransactionID(), a, decimal.NewFromInt(100), nil)
			return tx.ID, err
		}},
		{"Transfer 150 A->B", func() (string, error) {
			tx, err := e.Submit(ctx, transfer(150))
			return tx.ID, err
		}},
		{"Transfer 40 A->B", func() (string, error) {
			tx, err := e.Submit(ctx, transfer(40))
			return tx.ID, err
		}},
		{"Withdraw 1000 from A", func() (string, error) {
			tx, err := e.Withdraw(ctx, q.NewTransactionID(), a, decimal.NewFromInt(1000), nil)
			return tx.ID, err
		}},
	}

	for _, s := range steps {
		txID, err := s.submit()
		if err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
		e.Wait()

		tx, err := q.Transaction(txID)
		if err != nil {
			return err
		}
		acctA, _ := q.Account(a)
		acctB, _ := q.Account(b)
		fmt.Fprintf(out, "%-22s %-9s A=%s B=%s\n", s.label, tx.Status, acctA.Balance, acctB.Balance)
	}

	fmt.Fprintln(out, "\nBalances:")
	var held []money.Amount
	for _, acct := range q.Accounts() {
		bal := acct.Amount(acct.Balance)
		held = append(held, bal)
		fmt.Fprintf(out, "  %-2s %s %s\n", acct.Name, bal, acct.Status)
	}
	fmt.Fprintf(out, "Total held: %s EUR\n", money.Sum("EUR", held...))

	txs, err := q.AccountTransactions(a)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTransactions touching A: %d\n", len(txs))
	for _, tx := range txs {
		dir, amt, err := tx.DirectionFor(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s %-8s %-9s %s\n", tx.ID, dir, tx.Status, amt)
	}
	return nil
}
