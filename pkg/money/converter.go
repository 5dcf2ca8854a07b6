package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Converter converts an amount between two currencies.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// CurrencySet reports which currency codes are accepted.
type CurrencySet interface {
	Supports(code string) bool
}

// FixedRateConverter converts using a static table of rates.
// Each rate is the value of one unit of the currency expressed in the pivot
// currency, so the pivot itself always has rate 1.
type FixedRateConverter struct {
	pivot string
	rates map[string]decimal.Decimal
}

// DefaultRates are the fixed rates used when none are configured, expressed in COP.
var DefaultRates = map[string]decimal.Decimal{
	COP: decimal.NewFromInt(1),
	USD: decimal.NewFromInt(4000),
	EUR: decimal.NewFromInt(4300),
}

// NewFixedRateConverter creates a converter around a pivot currency and its rates.
// The pivot is added with rate 1 when missing.
func NewFixedRateConverter(pivot string, rates map[string]decimal.Decimal) *FixedRateConverter {
	pivot = strings.ToUpper(pivot)
	table := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		table[strings.ToUpper(code)] = rate
	}
	if _, ok := table[pivot]; !ok {
		table[pivot] = decimal.NewFromInt(1)
	}
	return &FixedRateConverter{pivot: pivot, rates: table}
}

// Convert returns amount expressed in the target currency, rounded to the
// target's minor units. It is the identity when from and to are the same code.
func (c *FixedRateConverter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	fromRate, ok := c.rates[from]
	if !ok || fromRate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := c.rates[to]
	if !ok || toRate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}

	rate := fromRate.Div(toRate)
	return NewFromDecimal(amount, from).Convert(to, rate).ToDecimal(), nil
}

// Supports reports whether the converter has a rate for the code.
func (c *FixedRateConverter) Supports(code string) bool {
	_, ok := c.rates[strings.ToUpper(code)]
	return ok
}
