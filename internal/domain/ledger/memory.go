package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps ledgers in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	ledgers map[uuid.UUID]*Snapshot
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ledgers: make(map[uuid.UUID]*Snapshot)}
}

// GetSnapshot returns a deep copy taken under the read lock.
func (r *MemoryRepository) GetSnapshot(_ context.Context, userID uuid.UUID) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.ledgers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

// CreateTransaction appends a transaction, keeping the ledger ordered by date.
func (r *MemoryRepository) CreateTransaction(_ context.Context, userID uuid.UUID, tx *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.ledgerLocked(userID)
	stored := *tx
	if tx.AccountID != nil {
		id := *tx.AccountID
		stored.AccountID = &id
	}
	l.Transactions = append(l.Transactions, stored)
	sortByDate(l.Transactions)
	return nil
}

// CreateGoal appends a goal.
func (r *MemoryRepository) CreateGoal(_ context.Context, userID uuid.UUID, goal *Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.ledgerLocked(userID)
	l.Goals = append(l.Goals, *goal)
	return nil
}

// CreateAccount appends an account.
func (r *MemoryRepository) CreateAccount(_ context.Context, userID uuid.UUID, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.ledgerLocked(userID)
	l.Accounts = append(l.Accounts, *account)
	return nil
}

// EnsureLedger creates the user's ledger when missing. An existing base
// currency is never overwritten.
func (r *MemoryRepository) EnsureLedger(_ context.Context, userID uuid.UUID, baseCurrency string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.ledgerLocked(userID)
	if l.BaseCurrency == "" {
		l.BaseCurrency = baseCurrency
	}
	return nil
}

func (r *MemoryRepository) ledgerLocked(userID uuid.UUID) *Snapshot {
	l, ok := r.ledgers[userID]
	if !ok {
		l = &Snapshot{}
		r.ledgers[userID] = l
	}
	return l
}

func sortByDate(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}
