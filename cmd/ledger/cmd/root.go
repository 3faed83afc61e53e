package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "An in-memory money transfer ledger",
	Long: `Ledger keeps accounts and their balances in memory and moves money
between them with transfers, deposits and withdrawals.

It provides tools for:
  - Serving the account and transaction HTTP API
  - Running a scripted demo against an in-process engine
  - Generating and validating configuration files
  - Reading the SQLite audit journal

Complete documentation is available at https://github.com/rustyeddy/ledger`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
