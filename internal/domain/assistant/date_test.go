package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return now.AddDate(0, 0, d) }

	tests := []struct {
		utterance string
		want      time.Time
	}{
		{"gasté 20k en uber ayer", day(-1)},
		{"anoche cena 50k", day(-1)},
		{"I spent 10 yesterday", day(-1)},
		{"antier pagué el taxi", day(-2)},
		{"anteayer pagué el taxi", day(-2)},
		{"the day before yesterday", day(-2)},
		{"mañana pago la luz", day(1)},
		{"tomorrow rent", day(1)},
		{"hace 3 días gasté 50k", day(-3)},
		{"hace 1 día", day(-1)},
		{"spent 40 on lunch 5 days ago", day(-5)},
		{"gasté 20k en uber", now},
		{"el domingo gasté 20k", now},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDate(tt.utterance, now))
		})
	}
}
