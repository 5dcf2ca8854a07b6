package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a user has no ledger yet.
	ErrNotFound = errors.New("ledger not found")
	// ErrInvalidDraft is returned when a draft cannot be materialized.
	ErrInvalidDraft = errors.New("invalid draft")
)

// Repository defines the persistence operations behind a ledger.
type Repository interface {
	// GetSnapshot returns a consistent copy of the user's ledger.
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	CreateTransaction(ctx context.Context, userID uuid.UUID, tx *Transaction) error
	CreateGoal(ctx context.Context, userID uuid.UUID, goal *Goal) error
	CreateAccount(ctx context.Context, userID uuid.UUID, account *Account) error
	// EnsureLedger creates the ledger with the given base currency if the
	// user has none. It is a no-op otherwise.
	EnsureLedger(ctx context.Context, userID uuid.UUID, baseCurrency string) error
}
