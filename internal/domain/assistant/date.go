package assistant

import (
	"strconv"
	"strings"
	"time"
)

type dateRule struct {
	tokens []string
	days   int
}

// Relative date tokens in match order. The two-day tokens come first
// because "anteayer" and "before yesterday" contain the one-day ones.
var dateRules = []dateRule{
	{[]string{"antier", "anteayer", "before yesterday"}, -2},
	{[]string{"yesterday", "ayer", "anoche"}, -1},
	{[]string{"tomorrow", "mañana"}, 1},
}

// ResolveDate applies at most one relative date adjustment to now.
// Weekday names and calendar dates are not recognized.
func ResolveDate(utterance string, now time.Time) time.Time {
	lower := strings.ToLower(utterance)
	for _, rule := range dateRules {
		for _, tok := range rule.tokens {
			if strings.Contains(lower, tok) {
				return now.AddDate(0, 0, rule.days)
			}
		}
	}

	if m := relativeDatePattern.FindStringSubmatch(lower); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil {
			return now.AddDate(0, 0, -n)
		}
	}
	return now
}
