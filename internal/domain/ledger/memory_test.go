package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_GetSnapshot_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_TransactionsOrderedByDate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.EnsureLedger(ctx, userID, "COP"))
	for _, offset := range []int{3, 1, 2} {
		tx := &Transaction{
			ID:     uuid.New(),
			Type:   TxTypeExpense,
			Amount: decimal.NewFromInt(int64(offset)),
			Date:   base.AddDate(0, 0, offset),
		}
		require.NoError(t, repo.CreateTransaction(ctx, userID, tx))
	}

	snap, err := repo.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 3)
	for i := 1; i < len(snap.Transactions); i++ {
		assert.True(t, snap.Transactions[i-1].Date.Before(snap.Transactions[i].Date))
	}
}

func TestMemoryRepository_SnapshotIsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()
	accountID := uuid.New()

	require.NoError(t, repo.CreateTransaction(ctx, userID, &Transaction{
		ID:        uuid.New(),
		Type:      TxTypeExpense,
		Amount:    decimal.NewFromInt(10),
		Category:  "Food",
		AccountID: &accountID,
	}))

	first, err := repo.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	first.Transactions[0].Category = "Changed"
	*first.Transactions[0].AccountID = uuid.Nil

	second, err := repo.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Food", second.Transactions[0].Category)
	assert.Equal(t, accountID, *second.Transactions[0].AccountID)
}

func TestMemoryRepository_EnsureLedgerKeepsBaseCurrency(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.EnsureLedger(ctx, userID, "USD"))
	require.NoError(t, repo.EnsureLedger(ctx, userID, "COP"))

	snap, err := repo.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "USD", snap.BaseCurrency)
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, repo.EnsureLedger(ctx, userID, "COP"))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = repo.CreateTransaction(ctx, userID, &Transaction{ID: uuid.New(), Type: TxTypeExpense, Amount: decimal.NewFromInt(1)})
			_, _ = repo.GetSnapshot(ctx, userID)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	snap, err := repo.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, snap.Transactions, 8)
}
