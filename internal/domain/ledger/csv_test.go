package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

const seedCSV = `date,type,amount,currency,category,note,account
2026-01-03,expense,25000,COP,Food,almuerzo,Nequi
2026-01-04,expense,12.5,USD,Transport,uber,Visa
2026-01-05,income,3000000,COP,Salary,sueldo,Nequi
not-a-date,expense,10,COP,Food,,Nequi
2026-01-06,refund,10,COP,Food,,Nequi
2026-01-07,expense,abc,COP,Food,,Nequi
2026-01-08,expense,-40,,Shopping,ropa,
`

func TestParseSeed(t *testing.T) {
	rows, err := ParseSeed(strings.NewReader(seedCSV))
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "2026-01-03", rows[0].Date)
	assert.Equal(t, "Nequi", rows[0].Account)
}

func TestService_Import(t *testing.T) {
	svc := NewService(NewMemoryRepository(), testLogger(), money.COP)
	ctx := context.Background()
	userID := uuid.New()

	result, err := svc.Import(ctx, userID, strings.NewReader(seedCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Imported)
	assert.Equal(t, 2, result.Accounts)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "date", result.Errors[0].Column)
	assert.Equal(t, 5, result.Errors[0].Row)
	assert.Equal(t, "type", result.Errors[1].Column)
	assert.Equal(t, "amount", result.Errors[2].Column)

	snap, err := svc.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 2)
	require.Len(t, snap.Transactions, 4)

	last := snap.Transactions[3]
	assert.Equal(t, money.COP, last.Currency, "blank currency falls back to the base currency")
	assert.True(t, decimal.NewFromInt(40).Equal(last.Amount), "amounts are stored as magnitudes")
	assert.Nil(t, last.AccountID)

	require.NotNil(t, snap.Transactions[0].AccountID)
	require.NotNil(t, snap.Transactions[2].AccountID)
	assert.Equal(t, *snap.Transactions[0].AccountID, *snap.Transactions[2].AccountID)
}

func TestSeedError(t *testing.T) {
	err := SeedError{Row: 3, Column: "amount", Message: "invalid amount"}
	assert.Equal(t, "row 3, column amount: invalid amount", err.Error())
}
