// Package memstore keeps accounts and transactions in process memory.
// Nothing survives a restart.
package memstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/ledger/ledger"
	deadlock "github.com/sasha-s/go-deadlock"
)

// Option configures a store.
type Option func(*options)

type options struct {
	newLock func() sync.Locker
	now     func() time.Time
}

// WithDeadlockDetection swaps the per-account mutexes for go-deadlock
// mutexes, which report lock-order inversions and long waits.
func WithDeadlockDetection(on bool) Option {
	return func(o *options) {
		if on {
			o.newLock = func() sync.Locker { return &deadlock.Mutex{} }
		}
	}
}

// WithClock overrides time.Now for LastUpdated and Processed stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		newLock: func() sync.Locker { return &sync.Mutex{} },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type accountEntry struct {
	mu   sync.Locker
	acct ledger.Account
}

// Accounts is an in-memory ledger.AccountStore. The map is guarded by an
// RWMutex held only for lookups and inserts; every account carries its own
// lock, so movements over unrelated accounts run in parallel.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]*accountEntry
	opts     options
}

var _ ledger.AccountStore = (*Accounts)(nil)

func NewAccounts(opts ...Option) *Accounts {
	return &Accounts{
		accounts: make(map[string]*accountEntry),
		opts:     newOptions(opts),
	}
}

func (s *Accounts) lookup(id string) (*accountEntry, error) {
	s.mu.RLock()
	e, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ledger.ErrAccountNotFound, id)
	}
	return e, nil
}

func (s *Accounts) Get(id string) (ledger.Account, error) {
	e, err := s.lookup(id)
	if err != nil {
		return ledger.Account{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct, nil
}

// List returns a snapshot of every account ordered by id.
func (s *Accounts) List() []ledger.Account {
	s.mu.RLock()
	entries := make([]*accountEntry, 0, len(s.accounts))
	for _, e := range s.accounts {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]ledger.Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.acct)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Accounts) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Create inserts a. An existing id is rejected with ErrDuplicateID rather
// than overwritten.
func (s *Accounts) Create(a ledger.Account) error {
	if a.ID == "" {
		return fmt.Errorf("%w: account id is empty", ledger.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return fmt.Errorf("%w: account %q already exists", ledger.ErrDuplicateID, a.ID)
	}
	s.accounts[a.ID] = &accountEntry{mu: s.opts.newLock(), acct: a}
	return nil
}

func (s *Accounts) Rename(id, name string) (ledger.Account, error) {
	if strings.TrimSpace(name) == "" {
		return ledger.Account{}, fmt.Errorf("%w: account name is empty", ledger.ErrValidation)
	}
	return s.update(id, func(a *ledger.Account) bool {
		if a.Name == name {
			return false
		}
		a.Name = name
		return true
	})
}

// Close marks the account CLOSED. Closing a closed account changes nothing.
func (s *Accounts) Close(id string) (ledger.Account, error) {
	return s.update(id, func(a *ledger.Account) bool {
		if a.IsClosed() {
			return false
		}
		a.Status = ledger.AccountClosed
		return true
	})
}

func (s *Accounts) update(id string, fn func(*ledger.Account) bool) (ledger.Account, error) {
	e, err := s.lookup(id)
	if err != nil {
		return ledger.Account{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if fn(&e.acct) {
		e.acct.LastUpdated = s.opts.now()
	}
	return e.acct, nil
}

// ApplyMovement implements the atomic apply. The participant locks are taken
// in ascending id order, so two transfers over the same pair in opposite
// directions cannot deadlock, and the sender check, credit and debit all
// happen while both locks are held.
func (s *Accounts) ApplyMovement(tx ledger.Transaction) ([]ledger.Account, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	var sender, receiver *accountEntry
	var err error
	if tx.HasSender() {
		if sender, err = s.lookup(tx.SenderID); err != nil {
			return nil, err
		}
	}
	if tx.HasReceiver() {
		if receiver, err = s.lookup(tx.ReceiverID); err != nil {
			return nil, err
		}
	}

	locked := lockOrder(sender, receiver)
	for _, e := range locked {
		e.mu.Lock()
	}
	defer func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}()

	if sender != nil {
		if tx.AmountSent.Currency != sender.acct.Currency {
			return nil, fmt.Errorf("%w: amount sent in %s, account %q holds %s",
				ledger.ErrValidation, tx.AmountSent.Currency, sender.acct.ID, sender.acct.Currency)
		}
		if sender.acct.Balance.LessThan(tx.AmountSent.Value) {
			return nil, fmt.Errorf("%w: transaction %q, account %q", ledger.ErrInsufficientBalance, tx.ID, tx.SenderID)
		}
	}
	if receiver != nil && tx.AmountReceived.Currency != receiver.acct.Currency {
		return nil, fmt.Errorf("%w: amount received in %s, account %q holds %s",
			ledger.ErrValidation, tx.AmountReceived.Currency, receiver.acct.ID, receiver.acct.Currency)
	}

	now := s.opts.now()
	if receiver != nil {
		receiver.acct.Balance = receiver.acct.Balance.Add(tx.AmountReceived.Value)
		receiver.acct.LastUpdated = now
	}
	if sender != nil {
		sender.acct.Balance = sender.acct.Balance.Sub(tx.AmountSent.Value)
		sender.acct.LastUpdated = now
	}

	out := make([]ledger.Account, 0, len(locked))
	for _, e := range locked {
		out = append(out, e.acct)
	}
	return out, nil
}

// lockOrder returns the distinct non-nil entries sorted by account id.
func lockOrder(a, b *accountEntry) []*accountEntry {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return []*accountEntry{b}
	case b == nil || a == b:
		return []*accountEntry{a}
	case a.acct.ID < b.acct.ID:
		return []*accountEntry{a, b}
	default:
		return []*accountEntry{b, a}
	}
}
