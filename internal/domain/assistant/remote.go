package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/FACorreiaa/echo-assistant/internal/domain/ledger"
	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrInvalidResponse is returned when the model output breaks the result contract.
var ErrInvalidResponse = errors.New("invalid model response")

// contentGenerator is the part of genai.Models used by RemoteEngine.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

const remotePromptTemplate = `You are a personal finance assistant. The user writes short messages in Spanish or English.
Reply in the user's language ("es" or "en").

Decide what the user wants:
- "create": record an expense, an income or a savings goal. Requires an amount.
- "query": a question about their finances, answered from the ledger summary below.
- "unknown": anything else, or a create request without an amount. Ask for what is missing.

Respond with ONLY raw JSON, no markdown:
{
  "text": "reply to show the user",
  "lang": "es" | "en",
  "intent": "create" | "query" | "unknown",
  "structured": null | {
    "type": "transaction",
    "data": {"type": "expense" | "income", "amount": "20000", "currency": "COP" | "USD" | "EUR",
             "category": one of {{.Categories}}, "note": "original message", "date": "RFC3339 date"}
  } | {
    "type": "goal",
    "data": {"name": "goal name", "targetAmount": "5000000", "currentAmount": "0",
             "currency": "COP" | "USD" | "EUR", "status": "active"}
  }
}

Rules:
- "structured" is present only when intent is "create".
- "k" and "mil" mean thousand, "m", "millón" and "millones" mean million.
- A bare "$" is USD in English and COP in Spanish. Default currency: {{.DefaultCurrency}}.
- Resolve relative dates ("ayer", "yesterday", "el domingo", "last friday") against today: {{.Today}}.
- Amounts are positive decimal strings.

Ledger (base currency {{.BaseCurrency}}):
{{.LedgerSummary}}
{{if .History}}
Conversation so far:
{{.History}}
{{end}}
User message:
{{.Utterance}}
`

var remotePrompt = template.Must(template.New("remote").Parse(remotePromptTemplate))

type promptData struct {
	Categories      string
	DefaultCurrency string
	BaseCurrency    string
	Today           string
	LedgerSummary   string
	History         string
	Utterance       string
}

// RemoteEngine is an Interpreter backed by a Gemini model.
type RemoteEngine struct {
	models     contentGenerator
	model      string
	timeout    time.Duration
	analyzer   *AnalysisEngine
	currencies money.CurrencySet
	now        func() time.Time
}

// NewRemoteEngine creates a Gemini client from an API key. Drafts in a
// currency outside currencies are rejected.
func NewRemoteEngine(ctx context.Context, apiKey, model string, timeout time.Duration, analyzer *AnalysisEngine, currencies money.CurrencySet) (*RemoteEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newRemoteEngine(client.Models, model, timeout, analyzer, currencies), nil
}

func newRemoteEngine(models contentGenerator, model string, timeout time.Duration, analyzer *AnalysisEngine, currencies money.CurrencySet) *RemoteEngine {
	if currencies == nil {
		currencies = money.NewFixedRateConverter(money.COP, money.DefaultRates)
	}
	return &RemoteEngine{
		models:     models,
		model:      model,
		timeout:    timeout,
		analyzer:   analyzer,
		currencies: currencies,
		now:        time.Now,
	}
}

// Name identifies the engine in metrics and logs.
func (e *RemoteEngine) Name() string { return "remote" }

func (e *RemoteEngine) Interpret(ctx context.Context, utterance string, ictx Context) (*Result, error) {
	prompt, err := e.buildPrompt(utterance, ictx)
	if err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := e.models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	var res Result
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if err := e.validateResult(&res, ictx.DefaultLanguage); err != nil {
		return nil, err
	}
	return &res, nil
}

func (e *RemoteEngine) buildPrompt(utterance string, ictx Context) (string, error) {
	now := ictx.Now
	if now.IsZero() {
		now = e.now()
	}
	snap := ictx.Ledger
	categories := make([]string, 0, len(DefaultCategories)+1)
	for _, c := range DefaultCategories {
		categories = append(categories, `"`+c.Category+`"`)
	}
	categories = append(categories, `"`+CategoryMisc+`"`)

	data := promptData{
		Categories:      strings.Join(categories, ", "),
		DefaultCurrency: ictx.DefaultCurrency,
		BaseCurrency:    baseCurrency(snap),
		Today:           now.Format("2006-01-02 (Monday)"),
		LedgerSummary:   e.ledgerSummary(snap),
		History:         strings.TrimSpace(ictx.History),
		Utterance:       utterance,
	}

	var buf bytes.Buffer
	if err := remotePrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// ledgerSummary lists per-category expense totals so the model can answer
// questions without receiving every transaction.
func (e *RemoteEngine) ledgerSummary(snap *ledger.Snapshot) string {
	top := e.analyzer.TopExpenses(snap, len(DefaultCategories)+1)
	if len(top) == 0 {
		return "(no expenses recorded)"
	}
	lines := make([]string, 0, len(top))
	for _, ct := range top {
		lines = append(lines, fmt.Sprintf("- %s: %s", ct.Category, ct.Amount.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

// validateResult enforces the Result contract on model output. Unknown
// categories become CategoryMisc.
func (e *RemoteEngine) validateResult(res *Result, fallback Language) error {
	res.Lang = ParseLanguage(string(res.Lang), fallback)
	if strings.TrimSpace(res.Text) == "" {
		return fmt.Errorf("%w: missing text", ErrInvalidResponse)
	}

	switch res.Intent {
	case IntentQuery, IntentUnknown:
		res.Structured = nil
		return nil
	case IntentCreate:
	default:
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidResponse, res.Intent)
	}

	d := res.Structured
	if d == nil {
		return fmt.Errorf("%w: create without structured payload", ErrInvalidResponse)
	}
	var (
		amount   decimal.Decimal
		currency *string
	)
	switch {
	case d.Transaction != nil:
		amount = d.Transaction.Amount
		currency = &d.Transaction.Currency
		if !d.Transaction.Type.Valid() {
			return fmt.Errorf("%w: transaction type %q", ErrInvalidResponse, d.Transaction.Type)
		}
		d.Transaction.Category = e.category(d.Transaction.Category)
	case d.Goal != nil:
		amount = d.Goal.TargetAmount
		currency = &d.Goal.Currency
		if d.Goal.Status == "" {
			d.Goal.Status = ledger.GoalStatusActive
		}
	default:
		return fmt.Errorf("%w: empty structured payload", ErrInvalidResponse)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidResponse)
	}
	*currency = strings.ToUpper(strings.TrimSpace(*currency))
	if !e.currencies.Supports(*currency) {
		return fmt.Errorf("%w: currency %q", ErrInvalidResponse, *currency)
	}
	return nil
}

// category maps a model-chosen category onto the classifier's names.
func (e *RemoteEngine) category(name string) string {
	name = strings.TrimSpace(name)
	for _, known := range e.analyzer.classifier.Categories() {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return CategoryMisc
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
