package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/ledger/api"
	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger HTTP API",
	Long: `Start the HTTP API on top of a fresh in-memory ledger.

Without -f the default configuration is used. LEDGER_* environment variables
(or a .env file) override either one. On SIGINT or SIGTERM the server stops
accepting requests, pending transactions are finalized and the journal is closed.

Example:
  ledger serve -f ledger.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "file", "f", "", "path to config file (YAML or JSON)")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	e, j, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			log.Warn("close journal", zap.Error(err))
		}
	}()

	readTimeout, writeTimeout, err := cfg.Server.Timeouts()
	if err != nil {
		return err
	}
	app := api.New(e, e.Query(), log, readTimeout, writeTimeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("journal", cfg.Journal.Type))
		errc <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := e.Close(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("drain engine", zap.Error(err))
		return err
	}
	return nil
}
