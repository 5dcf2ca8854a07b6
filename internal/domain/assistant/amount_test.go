package assistant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		lang      Language
		want      string
	}{
		{"mil suffix", "gasté 300mil en mercado", Spanish, "300000"},
		{"mil word", "gasté 300 mil en mercado", Spanish, "300000"},
		{"k suffix", "50k en comida", Spanish, "50000"},
		{"upper K", "50K en comida", Spanish, "50000"},
		{"millones", "me pagaron 2 millones", Spanish, "2000000"},
		{"millón", "1 millón para el viaje", Spanish, "1000000"},
		{"m suffix", "ahorrar 1.5m", English, "1500000"},
		{"no digits", "no numbers here", English, "0"},
		{"spanish thousands", "pagué 1.500.000 de arriendo", Spanish, "1500000"},
		{"spanish decimal comma", "café 12,5", Spanish, "12.5"},
		{"spanish thousands and decimals", "1.500,75 en ropa", Spanish, "1500.75"},
		{"spanish three digits after dot is thousands", "10.500 en taxi", Spanish, "10500"},
		{"spanish two digits after dot is decimal", "12.50 en café", Spanish, "12.5"},
		{"english thousands", "spent 1,500.75 on groceries", English, "1500.75"},
		{"english plain decimal", "coffee 3.75", English, "3.75"},
		{"dollar prefix", "$100 usd on shoes", English, "100"},
		{"first number wins", "20k en uber y 5k en propina", Spanish, "20000"},
		{"scale must end the word", "compré 5 manzanas", Spanish, "5"},
		{"trailing separator", "gasté 20.000.", Spanish, "20000"},
		{"relative date digits are not amounts", "hace 3 días gasté 50k", Spanish, "50000"},
		{"only a relative date", "gasté en comida hace 3 días", Spanish, "0"},
		{"days ago", "spent 40 on lunch 2 days ago", English, "40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAmount(tt.utterance, tt.lang)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestExtractAmount_NeverNegative(t *testing.T) {
	got := ExtractAmount("ajuste de -40", Spanish)
	assert.True(t, decimal.NewFromInt(40).Equal(got))
}

func TestHasDigit(t *testing.T) {
	assert.True(t, hasDigit("gasté 20k"))
	assert.False(t, hasDigit("¿cuánto gasté hace 3 días?"))
	assert.False(t, hasDigit("what did I spend 5 days ago"))
	assert.False(t, hasDigit(""))
}
