package assistant

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// amountPattern captures an optional currency prefix, a numeric run and an
// optional scale word. Alternatives are ordered longest first.
var amountPattern = regexp.MustCompile(`(?i)(\$|€|usd|eur|cop)?\s*(\d[\d.,]*)\s*(millones|millón|millon|mil|k|m)?`)

// relativeDatePattern matches "hace N días" and "N days ago". Its numbers
// are day counts, never amounts.
var relativeDatePattern = regexp.MustCompile(`(?i)hace\s+(\d+)\s+d[ií]as?|(\d+)\s+days?\s+ago`)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// ExtractAmount returns the first amount found in the utterance, or zero
// when there is none. Zero means "unknown", never a real zero amount.
func ExtractAmount(utterance string, lang Language) decimal.Decimal {
	text := stripRelativeDates(utterance)

	m := amountPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return decimal.Zero
	}

	raw := text[m[4]:m[5]]
	amount, err := decimal.NewFromString(normalizeNumber(raw, lang))
	if err != nil {
		return decimal.Zero
	}

	if m[6] >= 0 && !letterAt(text, m[7]) {
		switch strings.ToLower(text[m[6]:m[7]]) {
		case "k", "mil":
			amount = amount.Mul(thousand)
		default:
			amount = amount.Mul(million)
		}
	}
	return amount.Abs()
}

// letterAt reports whether the rune starting at byte offset i is a letter,
// which means the scale match was the prefix of a longer word ("5 manzanas").
func letterAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r)
}

// normalizeNumber rewrites a numeric run of digits, dots and commas as a
// plain decimal string.
//
// Spanish: a dot followed by exactly three digits is a thousands separator
// and is dropped; a comma is the decimal point. "1.500.000" is 1500000 and
// "12,5" is 12.5, but "10.500" is also read as 10500.
// English: commas are thousands separators and the dot is the decimal point.
func normalizeNumber(raw string, lang Language) string {
	raw = strings.TrimRight(raw, ".,")
	if lang != Spanish {
		return strings.ReplaceAll(raw, ",", "")
	}

	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '.' && isThousandsGroup(raw, i+1) {
			continue
		}
		if c == ',' {
			c = '.'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// isThousandsGroup reports whether s has exactly three digits starting at i.
func isThousandsGroup(s string, i int) bool {
	if i+3 > len(s) {
		return false
	}
	for j := i; j < i+3; j++ {
		if s[j] < '0' || s[j] > '9' {
			return false
		}
	}
	return i+3 == len(s) || s[i+3] < '0' || s[i+3] > '9'
}

func stripRelativeDates(s string) string {
	return relativeDatePattern.ReplaceAllString(s, " ")
}

// hasDigit reports whether the utterance has an ASCII digit outside of a
// relative-date phrase.
func hasDigit(s string) bool {
	return strings.ContainsAny(stripRelativeDates(s), "0123456789")
}
