// Package money provides currency-safe financial arithmetic using integer cents
// and the Fowler Money pattern. Amounts parsed from free text travel as
// decimal.Decimal and are turned into Money at the edges (display, storage).
package money

import (
	"errors"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Supported currency codes (ISO-4217). COP is the local currency of the
// assistant; USD and EUR are the two foreign currencies it understands.
const (
	COP = "COP" // Colombian Peso
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
)

// ErrUnsupportedCurrency is returned when a currency code is outside the
// configured set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal value.
// This is the safest way to create Money from a non-integer value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// Convert converts to a different currency using the given exchange rate.
// Rate is how many units of target currency per unit of source currency.
func (m *Money) Convert(targetCurrency string, rate decimal.Decimal) *Money {
	if m == nil || m.m == nil {
		return Zero(targetCurrency)
	}

	sourceDecimal := m.ToDecimal()
	targetDecimal := sourceDecimal.Mul(rate)

	return NewFromDecimal(targetDecimal, targetCurrency)
}

// Format renders a decimal amount in the given currency, e.g. "$20.000,00" for COP.
func Format(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}
