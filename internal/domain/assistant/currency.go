package assistant

import (
	"strings"

	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

type currencyRule struct {
	code     string
	keywords []string
}

// Explicit currency mentions, checked in order as substrings.
var currencyRules = []currencyRule{
	{money.USD, []string{"dollar", "dólar", "dolar", "usd"}},
	{money.EUR, []string{"euro", "eur", "€"}},
	{money.COP, []string{"peso", "cop"}},
}

// ResolveCurrency picks the currency of an utterance. Explicit words win,
// then the bare "$" sign (USD in English, pesos in Spanish), then fallback.
func ResolveCurrency(utterance, fallback string, lang Language) string {
	lower := strings.ToLower(utterance)
	for _, rule := range currencyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.code
			}
		}
	}

	if strings.Contains(lower, "$") {
		if lang == English {
			return money.USD
		}
		return money.COP
	}
	return fallback
}
