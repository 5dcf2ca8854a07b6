package assistant

import "strings"

// Intent is the outcome of interpreting an utterance
type Intent string

const (
	IntentCreate  Intent = "create"
	IntentQuery   Intent = "query"
	IntentUnknown Intent = "unknown"
)

// Target is the kind of record a create intent produces.
type Target string

const (
	TargetNone        Target = ""
	TargetTransaction Target = "transaction"
	TargetGoal        Target = "goal"
)

// keywordSet matches whole words or multi-word phrases against a token list.
type keywordSet [][]string

func newKeywordSet(phrases ...string) keywordSet {
	set := make(keywordSet, 0, len(phrases))
	for _, p := range phrases {
		set = append(set, tokenize(p))
	}
	return set
}

func (k keywordSet) matches(tokens []string) bool {
	for _, phrase := range k {
		if containsPhrase(tokens, phrase) {
			return true
		}
	}
	return false
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, word := range phrase {
			if tokens[i+j] != word {
				continue outer
			}
		}
		return true
	}
	return false
}

var (
	goalKeywords = newKeywordSet(
		"goal", "goals", "meta", "metas", "ahorro", "ahorrar", "save", "saving", "savings",
		"objetivo", "objetivos",
	)
	incomeKeywords = newKeywordSet(
		"recibí", "recibi", "pagaron", "ingreso", "ingresos", "gané", "gane", "cobré", "cobre",
		"income", "received", "earned", "got paid", "paid me", "bonus",
	)
	expenseKeywords = newKeywordSet(
		"gasté", "gaste", "gasto", "pagué", "pague", "compré", "compre", "costó", "costo",
		"spent", "spend", "i paid", "paid for", "bought", "buy", "cost", "expense",
	)
	// Salary words always make the utterance an income.
	salaryKeywords = newKeywordSet(
		"sueldo", "salario", "salary", "nómina", "nomina", "paycheck", "quincena",
	)
)

// Classification is the result of intent detection.
type Classification struct {
	Intent    Intent
	Target    Target
	IsIncome  bool
	IsExpense bool
	IsGoal    bool
	IsSalary  bool
	Analysis  bool
	HasDigit  bool
}

// Income reports whether a transaction target is an income. Ambiguous
// utterances default to expenses.
func (c Classification) Income() bool {
	return c.IsIncome && !c.IsExpense
}

// ClassifyIntent decides what the utterance asks for:
//
//  1. a goal keyword plus a digit is a goal
//  2. income and expense keyword sets, with salary words forcing income
//  3. an analysis keyword without digits is a question
//  4. questions, and utterances with no signal at all, are queries;
//     goals create goals; everything else creates a transaction
//
// The amount check that downgrades a create to unknown is left to the caller.
func ClassifyIntent(utterance string) Classification {
	tokens := tokenize(utterance)
	c := Classification{HasDigit: hasDigit(utterance)}

	c.IsGoal = c.HasDigit && goalKeywords.matches(tokens)
	c.IsIncome = incomeKeywords.matches(tokens)
	c.IsExpense = expenseKeywords.matches(tokens)
	if salaryKeywords.matches(tokens) {
		c.IsSalary = true
		c.IsIncome = true
		c.IsExpense = false
	}
	c.Analysis = !c.HasDigit && analysisKeywords.matches(tokens)

	switch {
	case c.Analysis || !(c.IsIncome || c.IsExpense || c.IsGoal || c.HasDigit):
		c.Intent = IntentQuery
	case c.IsGoal:
		c.Intent = IntentCreate
		c.Target = TargetGoal
	default:
		c.Intent = IntentCreate
		c.Target = TargetTransaction
	}
	return c
}

// normalizeSpaces collapses runs of whitespace.
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
