package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/ledger/ledger"
)

// Transactions is an in-memory ledger.TransactionStore with a secondary
// index by account id.
type Transactions struct {
	mu        sync.RWMutex
	byID      map[string]*ledger.Transaction
	byAccount map[string][]string
}

var _ ledger.TransactionStore = (*Transactions)(nil)

func NewTransactions() *Transactions {
	return &Transactions{
		byID:      make(map[string]*ledger.Transaction),
		byAccount: make(map[string][]string),
	}
}

func (s *Transactions) Get(id string) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byID[id]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("%w: %q", ledger.ErrTransactionNotFound, id)
	}
	return *tx, nil
}

// ListByAccount returns every transaction where accountID is the sender or
// the receiver, oldest first.
func (s *Transactions) ListByAccount(accountID string) []ledger.Transaction {
	s.mu.RLock()
	ids := s.byAccount[accountID]
	out := make([]ledger.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

func (s *Transactions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Create stores tx as PENDING whatever status it carries.
func (s *Transactions) Create(tx ledger.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tx.Status = ledger.StatusPending
	tx.Processed = time.Time{}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[tx.ID]; exists {
		return fmt.Errorf("%w: transaction %q already exists", ledger.ErrDuplicateID, tx.ID)
	}
	s.byID[tx.ID] = &tx
	if tx.HasSender() {
		s.byAccount[tx.SenderID] = append(s.byAccount[tx.SenderID], tx.ID)
	}
	if tx.HasReceiver() && tx.ReceiverID != tx.SenderID {
		s.byAccount[tx.ReceiverID] = append(s.byAccount[tx.ReceiverID], tx.ID)
	}
	return nil
}

// MarkCompleted moves a PENDING transaction to COMPLETED. An unknown id is
// ErrTransactionNotFound and a finalized one ErrAlreadyFinalized; neither
// changes the store.
func (s *Transactions) MarkCompleted(id string, at time.Time) (ledger.Transaction, error) {
	return s.finalize(id, func(tx *ledger.Transaction) error { return tx.Complete(at) })
}

// MarkAborted is the ABORTED counterpart of MarkCompleted.
func (s *Transactions) MarkAborted(id string, at time.Time) (ledger.Transaction, error) {
	return s.finalize(id, func(tx *ledger.Transaction) error { return tx.Abort(at) })
}

func (s *Transactions) finalize(id string, fn func(*ledger.Transaction) error) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byID[id]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("%w: %q", ledger.ErrTransactionNotFound, id)
	}
	if err := fn(tx); err != nil {
		return *tx, err
	}
	return *tx, nil
}
