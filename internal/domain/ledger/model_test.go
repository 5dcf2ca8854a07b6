package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_MarshalJSON(t *testing.T) {
	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	draft := NewTransactionDraft(TransactionDraft{
		Type:     TxTypeExpense,
		Amount:   decimal.NewFromInt(20000),
		Currency: "COP",
		Category: "Transport",
		Note:     "uber",
		Date:     date,
	})

	data, err := json.Marshal(draft)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "transaction", wire["type"])
	body, ok := wire["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Transport", body["category"])
	assert.Equal(t, "COP", body["currency"])
	assert.Equal(t, "20000", body["amount"])
}

func TestDraft_UnmarshalJSON(t *testing.T) {
	t.Run("goal", func(t *testing.T) {
		var d Draft
		err := json.Unmarshal([]byte(`{"type":"goal","data":{"name":"Carro","targetAmount":"1000","currentAmount":"0","currency":"USD","status":"active"}}`), &d)
		require.NoError(t, err)
		require.NotNil(t, d.Goal)
		assert.Nil(t, d.Transaction)
		assert.Equal(t, "Carro", d.Goal.Name)
		assert.True(t, decimal.NewFromInt(1000).Equal(d.Goal.TargetAmount))
	})

	t.Run("unknown type", func(t *testing.T) {
		var d Draft
		err := json.Unmarshal([]byte(`{"type":"budget","data":{}}`), &d)
		assert.ErrorIs(t, err, ErrInvalidDraft)
	})

	t.Run("bad payload", func(t *testing.T) {
		var d Draft
		err := json.Unmarshal([]byte(`{"type":"transaction","data":{"amount":"x"}}`), &d)
		assert.Error(t, err)
	})
}

func TestDraft_MarshalUnknownType(t *testing.T) {
	_, err := json.Marshal(Draft{Type: "other"})
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestSnapshot_Clone(t *testing.T) {
	var nilSnap *Snapshot
	assert.Nil(t, nilSnap.Clone())

	gen := NewTestDataGeneratorWithSeed(7)
	snap := gen.Snapshot("COP", 5)
	clone := snap.Clone()

	require.Equal(t, snap, clone)
	clone.Transactions[0].Category = "changed"
	clone.Accounts[0].Name = "changed"
	assert.NotEqual(t, "changed", snap.Transactions[0].Category)
	assert.NotEqual(t, "changed", snap.Accounts[0].Name)
}

func TestTestDataGenerator_Snapshot(t *testing.T) {
	gen := NewTestDataGeneratorWithSeed(42)
	snap := gen.Snapshot("COP", 10)

	assert.Len(t, snap.Transactions, 13)
	assert.Len(t, snap.Accounts, 2)
	for i, tx := range snap.Transactions {
		assert.True(t, tx.Amount.IsPositive())
		assert.True(t, tx.Type.Valid())
		assert.NotEqual(t, uuid.Nil, tx.ID)
		if i > 0 {
			assert.False(t, tx.Date.Before(snap.Transactions[i-1].Date))
		}
	}
}

func TestTxType_Valid(t *testing.T) {
	assert.True(t, TxTypeIncome.Valid())
	assert.True(t, TxTypeAdjustment.Valid())
	assert.False(t, TxType("transfer").Valid())
}
