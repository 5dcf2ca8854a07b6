package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Basic Money Operations Tests
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     int64
	}{
		{"positive cents", 1234, USD, 1234},
		{"zero", 0, USD, 0},
		{"large amount", 999999999, COP, 999999999},
		{"euro", 1000, EUR, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"precise decimal", "123.45", USD, 12345},
		{"many decimals", "99.999", USD, 10000}, // Rounds up
		{"whole number", "500", USD, 50000},
		{"pesos", "20000", COP, 2000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := decimal.NewFromString(tt.amount)
			m := NewFromDecimal(d, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestZero(t *testing.T) {
	m := Zero(COP)
	assert.Equal(t, int64(0), m.Amount())
	assert.True(t, m.ToDecimal().IsZero())
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		a       *Money
		b       *Money
		want    int64
		wantErr bool
	}{
		{"positive + positive", New(1000, USD), New(500, USD), 1500, false},
		{"with zero", New(1000, USD), Zero(USD), 1000, false},
		{"nil + value", nil, New(500, USD), 500, false},
		{"different currencies", New(100, USD), New(100, EUR), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.a.Add(tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Amount())
		})
	}
}

func TestConvert(t *testing.T) {
	// $100 USD to EUR at rate 0.85
	usd := New(10000, USD)
	rate := decimal.NewFromFloat(0.85)
	eur := usd.Convert(EUR, rate)

	assert.Equal(t, int64(8500), eur.Amount())
	assert.Equal(t, "85", eur.ToDecimal().String())

	var nilMoney *Money
	assert.Equal(t, int64(0), nilMoney.Convert(COP, rate).Amount())
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		contains string
	}{
		{"USD", 12345, USD, "$"},
		{"EUR", 12345, EUR, "€"},
		{"COP", 2000000, COP, "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Contains(t, m.Display(), tt.contains)
		})
	}
}

func TestFormat(t *testing.T) {
	out := Format(decimal.NewFromInt(20000), COP)
	assert.Contains(t, out, "$")
	assert.Contains(t, out, "20")
	assert.Equal(t, New(2000000, COP).Display(), out)
}

func TestNilSafety(t *testing.T) {
	var m *Money

	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, "$0.00", m.Display())
	assert.True(t, m.ToDecimal().IsZero())
}

// ============================================================================
// Converter Tests
// ============================================================================

func TestFixedRateConverter(t *testing.T) {
	conv := NewFixedRateConverter(COP, DefaultRates)

	tests := []struct {
		name   string
		amount string
		from   string
		to     string
		want   string
	}{
		{"identity", "123.45", USD, USD, "123.45"},
		{"usd to cop", "10", USD, COP, "40000"},
		{"eur to cop", "2", EUR, COP, "8600"},
		{"cop to usd", "20000", COP, USD, "5"},
		{"usd to eur", "43", USD, EUR, "40"},
		{"lower case codes", "1", "usd", "cop", "4000"},
		{"rounds to cents", "1", COP, USD, "0"},
		{"source rounded first", "12.555", USD, COP, "50240"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFixedRateConverter_Unsupported(t *testing.T) {
	conv := NewFixedRateConverter(COP, DefaultRates)

	_, err := conv.Convert(decimal.NewFromInt(1), "GBP", COP)
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = conv.Convert(decimal.NewFromInt(1), COP, "JPY")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	var set CurrencySet = conv
	assert.True(t, set.Supports("eur"))
	assert.False(t, set.Supports("GBP"))
	assert.False(t, set.Supports("JPY"))
}

func TestFixedRateConverter_AddsPivot(t *testing.T) {
	conv := NewFixedRateConverter(USD, map[string]decimal.Decimal{EUR: decimal.RequireFromString("1.1")})

	got, err := conv.Convert(decimal.NewFromInt(10), EUR, USD)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11).Equal(got))
}
