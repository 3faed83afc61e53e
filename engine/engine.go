// Package engine accepts money movements, persists them as PENDING and
// finalizes them in the background against the account store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/logging"
	"github.com/rustyeddy/ledger/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned by Submit after Close.
var ErrEngineClosed = errors.New("engine closed")

const defaultWorkers = 64

// Movement is a request to move money. Leave SenderID and AmountSent unset
// for a deposit, ReceiverID and AmountReceived for a withdrawal. Amounts are
// in the currency of the account they apply to.
type Movement struct {
	TransactionID  string
	SenderID       string
	ReceiverID     string
	AmountSent     *decimal.Decimal
	AmountReceived *decimal.Decimal
	When           *time.Time
}

func (m Movement) validate() error {
	switch {
	case m.TransactionID == "":
		return fmt.Errorf("%w: transaction id is empty", ledger.ErrValidation)
	case m.SenderID == "" && m.ReceiverID == "":
		return fmt.Errorf("%w: senderId and/or receiverId must be set", ledger.ErrValidation)
	case m.SenderID != "" && m.AmountSent == nil:
		return fmt.Errorf("%w: senderId is set, but amountSent is not", ledger.ErrValidation)
	case m.SenderID == "" && m.AmountSent != nil:
		return fmt.Errorf("%w: senderId is not set, but amountSent is", ledger.ErrValidation)
	case m.ReceiverID != "" && m.AmountReceived == nil:
		return fmt.Errorf("%w: receiverId is set, but amountReceived is not", ledger.ErrValidation)
	case m.ReceiverID == "" && m.AmountReceived != nil:
		return fmt.Errorf("%w: receiverId is not set, but amountReceived is", ledger.ErrValidation)
	case m.AmountSent != nil && !m.AmountSent.IsPositive():
		return fmt.Errorf("%w: amountSent must be positive", ledger.ErrValidation)
	case m.AmountReceived != nil && !m.AmountReceived.IsPositive():
		return fmt.Errorf("%w: amountReceived must be positive", ledger.ErrValidation)
	case m.SenderID != "" && m.SenderID == m.ReceiverID:
		return fmt.Errorf("%w: sender and receiver are the same account", ledger.ErrValidation)
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every finalized transaction to j.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// WithWorkers bounds how many finalizations apply at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type Engine struct {
	accounts ledger.AccountStore
	txs      ledger.TransactionStore
	journal  journal.Journal
	log      *zap.Logger
	now      func() time.Time
	workers  int
	sem      chan struct{}

	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	closed   bool
}

func New(accounts ledger.AccountStore, txs ledger.TransactionStore, opts ...Option) *Engine {
	e := &Engine{
		accounts: accounts,
		txs:      txs,
		journal:  journal.Discard{},
		log:      zap.NewNop(),
		now:      time.Now,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sem = make(chan struct{}, e.workers)
	e.idle = sync.NewCond(&e.mu)
	return e
}

// Query returns a read-only view over the engine's stores.
func (e *Engine) Query() *Query {
	return NewQuery(e.accounts, e.txs)
}

// CreateAccount opens an ACTIVE account with a zero balance.
func (e *Engine) CreateAccount(ctx context.Context, id, name, currency string) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	if id == "" {
		return ledger.Account{}, fmt.Errorf("%w: account id is empty", ledger.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ledger.Account{}, fmt.Errorf("%w: account name is empty", ledger.ErrValidation)
	}
	c, err := money.ParseCurrency(currency)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("%w: %w", ledger.ErrValidation, err)
	}

	acct := ledger.NewAccount(id, name, c, e.now())
	if err := e.accounts.Create(acct); err != nil {
		return ledger.Account{}, err
	}
	e.log.Info("account created",
		zap.String("account_id", id),
		zap.String("currency", c.String()),
	)
	return acct, nil
}

func (e *Engine) RenameAccount(ctx context.Context, id, name string) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	return e.accounts.Rename(id, name)
}

// CloseAccount marks an account CLOSED. Its balance is kept and stays
// queryable; new movements touching it are rejected.
func (e *Engine) CloseAccount(ctx context.Context, id string) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	acct, err := e.accounts.Close(id)
	if err != nil {
		return ledger.Account{}, err
	}
	e.log.Info("account closed", zap.String("account_id", id))
	return acct, nil
}

// Submit validates m, stores it as a PENDING transaction and returns that
// record. Balances are applied later by a background finalization; poll the
// transaction to see whether it ended COMPLETED or ABORTED.
func (e *Engine) Submit(ctx context.Context, m Movement) (ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Transaction{}, err
	}
	if !e.begin() {
		return ledger.Transaction{}, ErrEngineClosed
	}

	tx, err := e.prepare(m)
	if err != nil {
		e.done()
		return ledger.Transaction{}, err
	}

	go e.finalize(tx)
	return tx, nil
}

// Deposit credits accountID with amount.
func (e *Engine) Deposit(ctx context.Context, txID, accountID string, amount decimal.Decimal, when *time.Time) (ledger.Transaction, error) {
	return e.Submit(ctx, Movement{
		TransactionID:  txID,
		ReceiverID:     accountID,
		AmountReceived: &amount,
		When:           when,
	})
}

// Withdraw debits accountID by amount.
func (e *Engine) Withdraw(ctx context.Context, txID, accountID string, amount decimal.Decimal, when *time.Time) (ledger.Transaction, error) {
	return e.Submit(ctx, Movement{
		TransactionID: txID,
		SenderID:      accountID,
		AmountSent:    &amount,
		When:          when,
	})
}

// Wait blocks until every finalization started so far has finished.
func (e *Engine) Wait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.inflight > 0 {
		e.idle.Wait()
	}
}

// Close rejects further submissions and waits for in-flight finalizations,
// or for ctx to be done.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	idle := e.inflight == 0
	e.mu.Unlock()
	if idle {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		e.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain finalizations: %w", ctx.Err())
	}
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.inflight++
	return true
}

func (e *Engine) done() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight--
	if e.inflight == 0 {
		e.idle.Broadcast()
	}
}

// prepare runs every synchronous check and persists the PENDING record.
// Nothing is stored when it fails.
func (e *Engine) prepare(m Movement) (ledger.Transaction, error) {
	if err := m.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	sent, err := e.resolve(m.SenderID, m.AmountSent)
	if err != nil {
		return ledger.Transaction{}, err
	}
	received, err := e.resolve(m.ReceiverID, m.AmountReceived)
	if err != nil {
		return ledger.Transaction{}, err
	}

	created := e.now()
	if m.When != nil {
		created = *m.When
	}

	tx, err := ledger.NewTransaction(m.TransactionID, m.SenderID, m.ReceiverID, sent, received, created)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := e.txs.Create(tx); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

// resolve looks up an optional party and attaches its currency to v.
func (e *Engine) resolve(accountID string, v *decimal.Decimal) (*money.Amount, error) {
	if accountID == "" {
		return nil, nil
	}
	acct, err := e.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}
	if acct.IsClosed() {
		return nil, fmt.Errorf("%w: %q", ledger.ErrAccountClosed, accountID)
	}
	a := acct.Amount(*v)
	return &a, nil
}

func (e *Engine) finalize(tx ledger.Transaction) {
	defer e.done()

	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	log := e.log.With(zap.String("transaction_id", tx.ID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("finalization panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	touched, err := e.accounts.ApplyMovement(tx)

	var final ledger.Transaction
	switch {
	case err == nil:
		final, err = e.txs.MarkCompleted(tx.ID, e.now())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		log.Info("transaction aborted", zap.String("sender_id", tx.SenderID), zap.Error(err))
		touched = nil
		final, err = e.txs.MarkAborted(tx.ID, e.now())
	default:
		log.Error("apply movement", zap.Error(err))
		return
	}
	if err != nil {
		log.Error("finalize transaction", zap.Error(err))
		return
	}

	log.Debug("transaction finalized",
		zap.String("kind", final.Kind()),
		zap.String("status", string(final.Status)),
	)
	e.record(log, final, touched)
}

func (e *Engine) record(log *zap.Logger, tx ledger.Transaction, touched []ledger.Account) {
	if err := e.journal.RecordTransaction(journal.FromTransaction(tx)); err != nil {
		log.Warn("journal transaction", zap.Error(err))
	}
	if tx.Status != ledger.StatusCompleted {
		return
	}
	for _, a := range touched {
		if err := e.journal.RecordBalance(journal.SnapshotOf(a, tx.ID)); err != nil {
			log.Warn("journal balance", zap.String("account_id", a.ID), zap.Error(err))
		}
	}
}
