// Package assistant turns short Spanish or English finance utterances into
// ledger drafts or answers computed from the user's ledger.
package assistant

import (
	"strings"
	"unicode"
)

// Language is the detected language of an utterance
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
)

// ParseLanguage maps a language tag ("es", "en-US", ...) to a Language,
// returning fallback for anything else.
func ParseLanguage(tag string, fallback Language) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case strings.HasPrefix(tag, "es"):
		return Spanish
	case strings.HasPrefix(tag, "en"):
		return English
	}
	return fallback
}

// Words unique to one language. Words shared by both ("a", "me", "no")
// are left out so they never tip the balance.
var spanishWords = wordSet(
	"el", "la", "los", "las", "de", "del", "en", "un", "una", "unos", "que", "y", "con",
	"para", "por", "mi", "mis", "tu", "cuánto", "cuanto", "cuánta", "cuáles", "cuales",
	"qué", "gasté", "gaste", "pagué", "pague", "compré", "compre", "pagaron", "recibí", "recibi",
	"ayer", "hoy", "mañana", "anoche", "antier", "hace", "días", "dias", "gastos", "dinero",
	"quiero", "ahorrar", "meta", "sueldo", "mayores", "consejo", "cómo", "como", "dame",
	"pesos", "almuerzo", "comida", "este", "esta", "mes", "semana", "mucho",
)

var englishWords = wordSet(
	"the", "i", "my", "on", "in", "for", "of", "to", "and", "how", "much", "what", "which",
	"did", "do", "spent", "spend", "paid", "pay", "bought", "buy", "got", "received",
	"yesterday", "today", "tomorrow", "ago", "days", "expenses", "money", "want", "save",
	"goal", "salary", "top", "biggest", "highest", "advice", "give", "some", "lunch",
	"food", "dollars", "this", "month", "week", "have", "is", "are", "was",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tokenize lower-cases s and splits it on every rune that is neither a
// letter nor a digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DetectLanguage counts the distinct Spanish and English marker words in
// the utterance. The language with strictly more markers wins; a tie
// returns fallback.
func DetectLanguage(utterance string, fallback Language) Language {
	seen := make(map[string]struct{})
	var es, en int
	for _, tok := range tokenize(utterance) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := spanishWords[tok]; ok {
			es++
		}
		if _, ok := englishWords[tok]; ok {
			en++
		}
	}

	switch {
	case es > en:
		return Spanish
	case en > es:
		return English
	}
	return fallback
}
