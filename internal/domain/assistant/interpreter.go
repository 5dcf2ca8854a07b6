package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/echo-assistant/internal/domain/ledger"
	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

// Result is the outcome of one interpretation. Structured is set only for
// IntentCreate.
type Result struct {
	Text       string        `json:"text"`
	Lang       Language      `json:"lang"`
	Intent     Intent        `json:"intent"`
	Structured *ledger.Draft `json:"structured,omitempty"`
}

// Context carries the per-call inputs of an interpretation.
type Context struct {
	DefaultLanguage Language
	DefaultCurrency string
	// Ledger must not be mutated while the call runs.
	Ledger *ledger.Snapshot
	// History is an optional summary of earlier turns, used only by remote engines.
	History string
	// Now overrides the current time when set.
	Now time.Time
}

// Interpreter turns an utterance into a Result.
type Interpreter interface {
	Interpret(ctx context.Context, utterance string, ictx Context) (*Result, error)
}

// LocalEngine is the deterministic rule-based Interpreter. It performs no
// I/O and is safe for concurrent use.
type LocalEngine struct {
	categories []CategoryKeywords
	typos      bool
	classifier *CategoryClassifier
	analyzer   *AnalysisEngine
	now        func() time.Time
	delay      time.Duration
	logger     *slog.Logger
}

// LocalOption configures a LocalEngine.
type LocalOption func(*LocalEngine)

// WithThinkingDelay waits d before answering. The wait honours ctx.
func WithThinkingDelay(d time.Duration) LocalOption {
	return func(e *LocalEngine) { e.delay = d }
}

// WithNow overrides the engine clock.
func WithNow(now func() time.Time) LocalOption {
	return func(e *LocalEngine) { e.now = now }
}

// WithCategories replaces the default category table.
func WithCategories(table []CategoryKeywords) LocalOption {
	return func(e *LocalEngine) { e.categories = table }
}

// WithTypoTolerance lets the classifier accept keywords misspelled by one
// edit when nothing matches exactly.
func WithTypoTolerance(enabled bool) LocalOption {
	return func(e *LocalEngine) { e.typos = enabled }
}

// NewLocalEngine creates the rule-based engine
func NewLocalEngine(converter money.Converter, logger *slog.Logger, opts ...LocalOption) *LocalEngine {
	e := &LocalEngine{
		categories: DefaultCategories,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	var classifierOpts []ClassifierOption
	if e.typos {
		classifierOpts = append(classifierOpts, WithFuzzyFallback())
	}
	e.classifier = NewCategoryClassifier(e.categories, classifierOpts...)
	e.analyzer = NewAnalysisEngine(e.classifier, converter, logger)
	return e
}

// Name identifies the engine in metrics and logs.
func (e *LocalEngine) Name() string { return "local" }

// Analyzer exposes the engine's analysis component.
func (e *LocalEngine) Analyzer() *AnalysisEngine { return e.analyzer }

// Interpret never fails except when ctx ends during the thinking delay.
func (e *LocalEngine) Interpret(ctx context.Context, utterance string, ictx Context) (*Result, error) {
	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return e.interpret(utterance, ictx), nil
}

func (e *LocalEngine) interpret(utterance string, ictx Context) *Result {
	fallbackLang := ictx.DefaultLanguage
	if fallbackLang == "" {
		fallbackLang = Spanish
	}
	lang := DetectLanguage(utterance, fallbackLang)
	msg := messagesFor(lang)

	snap := ictx.Ledger
	if snap == nil {
		snap = &ledger.Snapshot{BaseCurrency: ictx.DefaultCurrency}
	}
	defaultCurrency := ictx.DefaultCurrency
	if defaultCurrency == "" {
		defaultCurrency = baseCurrency(snap)
	}
	now := ictx.Now
	if now.IsZero() {
		now = e.now()
	}

	amount := ExtractAmount(utterance, lang)
	currency := ResolveCurrency(utterance, defaultCurrency, lang)
	category := e.classifier.Classify(utterance)
	date := ResolveDate(utterance, now)
	c := ClassifyIntent(utterance)

	if c.Intent == IntentQuery {
		return &Result{
			Text:   e.analyzer.Answer(utterance, lang, snap),
			Lang:   lang,
			Intent: IntentQuery,
		}
	}

	if !amount.IsPositive() {
		e.logger.Debug("create intent without amount", "target", c.Target, "lang", lang)
		return &Result{Text: msg.clarifyAmount, Lang: lang, Intent: IntentUnknown}
	}

	if c.Target == TargetGoal {
		goal := ledger.GoalDraft{
			Name:          goalName(utterance, msg.defaultGoalName),
			TargetAmount:  amount,
			CurrentAmount: decimal.Zero,
			Currency:      currency,
			Status:        ledger.GoalStatusActive,
		}
		return &Result{
			Text:       fmt.Sprintf(msg.goalCreated, goal.Name, money.Format(amount, currency)),
			Lang:       lang,
			Intent:     IntentCreate,
			Structured: ledger.NewGoalDraft(goal),
		}
	}

	txType := ledger.TxTypeExpense
	kind := msg.expense
	if c.Income() {
		txType = ledger.TxTypeIncome
		kind = msg.income
		if category == CategoryMisc {
			category = CategorySalary
		}
	}

	tx := ledger.TransactionDraft{
		Type:      txType,
		Amount:    amount,
		Currency:  currency,
		Category:  category,
		Note:      normalizeSpaces(utterance),
		Date:      date,
		AccountID: pickAccount(snap.Accounts, currency),
	}
	return &Result{
		Text:       fmt.Sprintf(msg.transactionCreated, kind, money.Format(amount, currency), msg.categoryName(category)),
		Lang:       lang,
		Intent:     IntentCreate,
		Structured: ledger.NewTransactionDraft(tx),
	}
}

// pickAccount returns the first account in the currency, else the first account.
func pickAccount(accounts []ledger.Account, currency string) *uuid.UUID {
	for _, a := range accounts {
		if strings.EqualFold(a.Currency, currency) {
			id := a.ID
			return &id
		}
	}
	if len(accounts) > 0 {
		id := accounts[0].ID
		return &id
	}
	return nil
}

var goalNamePattern = regexp.MustCompile(`(?i)\b(?:para|for)\s+(.+)$`)

var goalNameArticles = []string{"un ", "una ", "el ", "la ", "mi ", "mis ", "a ", "an ", "the ", "my "}

// goalName takes the text after "para"/"for" as the goal name.
func goalName(utterance, fallback string) string {
	m := goalNamePattern.FindStringSubmatch(strings.TrimSpace(utterance))
	if m == nil {
		return fallback
	}
	name := strings.TrimRight(normalizeSpaces(m[1]), ".!?¡¿ ")
	lower := strings.ToLower(name)
	for _, article := range goalNameArticles {
		if strings.HasPrefix(lower, article) {
			name = name[len(article):]
			break
		}
	}
	if name == "" {
		return fallback
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
