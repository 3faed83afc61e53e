package cmd

import (
	"fmt"

	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/engine"
	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/memstore"
	"go.uber.org/zap"
)

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TransactionsFile, cfg.BalancesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "", "none":
		return journal.Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// newEngine wires fresh in-memory stores and the configured journal into an
// engine. The caller closes the returned journal after draining the engine.
func newEngine(cfg *config.Config, log *zap.Logger) (*engine.Engine, journal.Journal, error) {
	j, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("create journal: %w", err)
	}

	accounts := memstore.NewAccounts(memstore.WithDeadlockDetection(cfg.Engine.DeadlockDetection))
	txs := memstore.NewTransactions()

	e := engine.New(accounts, txs,
		engine.WithJournal(j),
		engine.WithLogger(log),
		engine.WithWorkers(cfg.Engine.Workers),
	)
	return e, j, nil
}
