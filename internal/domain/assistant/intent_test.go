package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		wantIntent Intent
		wantTarget Target
		wantIncome bool
	}{
		{"spanish expense", "gasté 20k en uber ayer", IntentCreate, TargetTransaction, false},
		{"english expense", "I spent 20 dollars on lunch", IntentCreate, TargetTransaction, false},
		{"bare amount", "20k uber", IntentCreate, TargetTransaction, false},
		{"expense without amount", "gasté en comida", IntentCreate, TargetTransaction, false},
		{"income", "recibí 500k de un cliente", IntentCreate, TargetTransaction, true},
		{"english income", "got paid 3000 today", IntentCreate, TargetTransaction, true},
		{"salary without amount", "me pagaron mi sueldo", IntentCreate, TargetTransaction, true},
		{"salary overrides expense", "pagué 2 millones de sueldo", IntentCreate, TargetTransaction, true},
		{"goal", "quiero ahorrar 5 millones para un viaje", IntentCreate, TargetGoal, false},
		{"english goal", "savings goal of 1000 for a laptop", IntentCreate, TargetGoal, false},
		{"goal word without digits", "cuál es mi meta", IntentQuery, TargetNone, false},
		{"spend question", "¿cuánto gasté en comida?", IntentQuery, TargetNone, false},
		{"top question", "what are my top expenses?", IntentQuery, TargetNone, false},
		{"advice", "dame un consejo", IntentQuery, TargetNone, false},
		{"no signal", "hola", IntentQuery, TargetNone, false},
		{"empty", "", IntentQuery, TargetNone, false},
		{"relative date is not a digit", "¿cuánto gasté hace 3 días?", IntentQuery, TargetNone, false},
		{"paid alone is not an expense", "paid", IntentQuery, TargetNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyIntent(tt.utterance)
			assert.Equal(t, tt.wantIntent, c.Intent)
			assert.Equal(t, tt.wantTarget, c.Target)
			assert.Equal(t, tt.wantIncome, c.Income())
		})
	}
}

func TestClassifyIntent_Flags(t *testing.T) {
	c := ClassifyIntent("me pagaron mi sueldo")
	assert.True(t, c.IsIncome)
	assert.True(t, c.IsSalary)
	assert.False(t, c.IsExpense)
	assert.False(t, c.HasDigit)

	c = ClassifyIntent("compré ropa y recibí 20k")
	assert.True(t, c.IsIncome)
	assert.True(t, c.IsExpense)
	assert.False(t, c.Income(), "ambiguous utterances are expenses")
}

func TestKeywordSet_MatchesWholeWords(t *testing.T) {
	set := newKeywordSet("got paid", "mas")

	assert.True(t, set.matches(tokenize("I got paid today")))
	assert.False(t, set.matches(tokenize("I got a paid plan")))
	assert.False(t, set.matches(tokenize("mascotas")))
	assert.True(t, set.matches(tokenize("¿qué es lo mas caro?")))
}
