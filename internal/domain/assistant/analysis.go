package assistant

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/echo-assistant/internal/domain/ledger"
	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

const topExpensesLimit = 3

var (
	spendKeywords = newKeywordSet(
		"cuánto", "cuanto", "cuánta", "cuanta", "how much", "gasté", "gaste", "gastado",
		"spent", "spend", "total",
	)
	superlativeKeywords = newKeywordSet(
		"top", "mayor", "mayores", "más", "mas", "highest", "biggest", "largest", "most",
	)
	adviceKeywords = newKeywordSet(
		"consejo", "consejos", "advice", "tip", "tips", "ahorrar", "ahorro", "save", "saving",
		"savings", "recomendación", "recomendaciones", "recommendation",
	)
	// analysisKeywords mark an utterance as a question about the ledger.
	analysisKeywords = concatKeywords(
		newKeywordSet(
			"cuánto", "cuanto", "cuánta", "cuanta", "how much", "total", "resumen", "summary",
			"gastos", "expenses", "análisis", "analisis", "analysis",
		),
		superlativeKeywords,
		adviceKeywords,
	)
)

func concatKeywords(sets ...keywordSet) keywordSet {
	var out keywordSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// CategoryTotal is the converted expense total of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// AnalysisEngine answers questions about a ledger snapshot.
type AnalysisEngine struct {
	classifier *CategoryClassifier
	converter  money.Converter
	logger     *slog.Logger
}

// NewAnalysisEngine creates an analysis engine
func NewAnalysisEngine(classifier *CategoryClassifier, converter money.Converter, logger *slog.Logger) *AnalysisEngine {
	return &AnalysisEngine{
		classifier: classifier,
		converter:  converter,
		logger:     logger,
	}
}

// Answer replies to an analytical utterance in lang. The first matching
// behavior answers: category spend, top expenses, advice, usage hint.
func (a *AnalysisEngine) Answer(utterance string, lang Language, snap *ledger.Snapshot) string {
	msg := messagesFor(lang)
	tokens := tokenize(utterance)
	base := baseCurrency(snap)

	if category := a.classifier.Classify(utterance); category != CategoryMisc && spendKeywords.matches(tokens) {
		total := a.CategorySpend(snap, category)
		return fmt.Sprintf(msg.categorySpend, money.Format(total, base), msg.categoryName(category))
	}

	if superlativeKeywords.matches(tokens) {
		top := a.TopExpenses(snap, topExpensesLimit)
		if len(top) == 0 {
			return msg.notEnoughData
		}
		lines := make([]string, 0, len(top)+1)
		lines = append(lines, msg.topHeader)
		for _, ct := range top {
			lines = append(lines, fmt.Sprintf(msg.topLine, msg.categoryName(ct.Category), money.Format(ct.Amount, base)))
		}
		return strings.Join(lines, "\n")
	}

	if adviceKeywords.matches(tokens) {
		return msg.advice
	}
	return msg.usageHint
}

// CategorySpend sums the expenses of a category in the snapshot's base currency.
// Category names compare case-insensitively.
func (a *AnalysisEngine) CategorySpend(snap *ledger.Snapshot, category string) decimal.Decimal {
	total := money.Zero(baseCurrency(snap))
	a.eachExpense(snap, func(tx ledger.Transaction, amount *money.Money) {
		if strings.EqualFold(tx.Category, category) {
			total = a.add(total, amount, tx)
		}
	})
	return total.ToDecimal()
}

// TopExpenses groups expenses by category and returns the n largest totals.
// Categories differing only in case share a bucket. Ties keep the order in
// which categories first appear in the ledger.
func (a *AnalysisEngine) TopExpenses(snap *ledger.Snapshot, n int) []CategoryTotal {
	var (
		totals []CategoryTotal
		sums   []*money.Money
	)
	index := make(map[string]int)
	base := baseCurrency(snap)

	a.eachExpense(snap, func(tx ledger.Transaction, amount *money.Money) {
		category := a.canonicalCategory(tx.Category)
		key := strings.ToLower(category)
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, CategoryTotal{Category: category})
			sums = append(sums, money.Zero(base))
		}
		sums[i] = a.add(sums[i], amount, tx)
	})
	for i := range totals {
		totals[i].Amount = sums[i].ToDecimal()
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Amount.GreaterThan(totals[j].Amount)
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// canonicalCategory maps a stored category onto the classifier's spelling
// when they differ only in case.
func (a *AnalysisEngine) canonicalCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryMisc
	}
	for _, known := range a.classifier.Categories() {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return name
}

func (a *AnalysisEngine) add(total, amount *money.Money, tx ledger.Transaction) *money.Money {
	sum, err := total.Add(amount)
	if err != nil {
		a.logger.Warn("skipping transaction in analysis", "transactionID", tx.ID.String(), "error", err)
		return total
	}
	return sum
}

// eachExpense calls fn with every expense converted to the base currency.
// Transactions whose currency cannot be converted are skipped.
func (a *AnalysisEngine) eachExpense(snap *ledger.Snapshot, fn func(ledger.Transaction, *money.Money)) {
	if snap == nil {
		return
	}
	base := baseCurrency(snap)
	for _, tx := range snap.Transactions {
		if tx.Type != ledger.TxTypeExpense {
			continue
		}
		amount, err := a.converter.Convert(tx.Amount, tx.Currency, base)
		if err != nil {
			a.logger.Warn("skipping transaction in analysis",
				"transactionID", tx.ID.String(),
				"currency", tx.Currency,
				"error", err)
			continue
		}
		fn(tx, money.NewFromDecimal(amount, base))
	}
}

func baseCurrency(snap *ledger.Snapshot) string {
	if snap == nil || snap.BaseCurrency == "" {
		return money.COP
	}
	return snap.BaseCurrency
}
