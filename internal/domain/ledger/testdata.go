package ledger

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic ledgers using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
		now:   time.Now(),
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
		now:   time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

var generatorCategories = []string{
	"Food", "Transport", "Housing", "Utilities", "Health",
	"Entertainment", "Shopping", "Education",
}

var generatorCurrencies = []string{"COP", "USD", "EUR"}

// Category returns a random expense category.
func (g *TestDataGenerator) Category() string {
	return generatorCategories[g.faker.IntRange(0, len(generatorCategories)-1)]
}

// Currency returns one of the supported currency codes.
func (g *TestDataGenerator) Currency() string {
	return generatorCurrencies[g.faker.IntRange(0, len(generatorCurrencies)-1)]
}

// Amount returns a positive amount with two decimals between min and max.
func (g *TestDataGenerator) Amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
}

// Account generates a random account.
func (g *TestDataGenerator) Account(currency string) Account {
	return Account{
		ID:       uuid.New(),
		Name:     g.faker.Company(),
		Currency: currency,
	}
}

// Expense generates a random expense within the last year.
func (g *TestDataGenerator) Expense(currency string) Transaction {
	return g.transaction(TxTypeExpense, currency, g.Category())
}

// Income generates a random salary payment.
func (g *TestDataGenerator) Income(currency string) Transaction {
	return g.transaction(TxTypeIncome, currency, "Salary")
}

func (g *TestDataGenerator) transaction(txType TxType, currency, category string) Transaction {
	date := g.faker.DateRange(g.now.AddDate(-1, 0, 0), g.now)
	return Transaction{
		ID:        uuid.New(),
		Type:      txType,
		Amount:    g.Amount(1, 500),
		Currency:  currency,
		Category:  category,
		Note:      g.faker.Phrase(),
		Date:      date,
		CreatedAt: date,
	}
}

// Goal generates a random active savings goal.
func (g *TestDataGenerator) Goal(currency string) Goal {
	return Goal{
		ID:            uuid.New(),
		Name:          g.faker.Hobby(),
		TargetAmount:  g.Amount(1000, 10000),
		CurrentAmount: decimal.Zero,
		Currency:      currency,
		Status:        GoalStatusActive,
		CreatedAt:     g.now,
	}
}

// Snapshot generates a ledger with mixed-currency expenses, a few incomes
// and a goal. Transactions are ordered by date.
func (g *TestDataGenerator) Snapshot(baseCurrency string, expenses int) *Snapshot {
	snap := &Snapshot{
		BaseCurrency: baseCurrency,
		Accounts:     []Account{g.Account(baseCurrency), g.Account(g.Currency())},
		Goals:        []Goal{g.Goal(baseCurrency)},
	}

	for i := 0; i < expenses; i++ {
		snap.Transactions = append(snap.Transactions, g.Expense(g.Currency()))
	}
	for i := 0; i < 3; i++ {
		snap.Transactions = append(snap.Transactions, g.Income(baseCurrency))
	}

	sortByDate(snap.Transactions)
	return snap
}
