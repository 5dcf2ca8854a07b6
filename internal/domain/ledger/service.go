package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

// EventDraftCommitted is the routing key used when a draft is materialized.
const EventDraftCommitted = "draft.committed"

// Publisher delivers domain events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// CommittedEvent is published after a draft has been persisted.
type CommittedEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Type      DraftType `json:"type"`
	Draft     *Draft    `json:"draft"`
	CreatedAt time.Time `json:"createdAt"`
}

// Receipt identifies a committed draft.
type Receipt struct {
	ID        uuid.UUID `json:"id"`
	Type      DraftType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type cachedSnapshot struct {
	snapshot *Snapshot
	loadedAt time.Time
}

// Service is the snapshot provider and action sink in front of a Repository.
type Service struct {
	repo         Repository
	logger       *slog.Logger
	baseCurrency string
	publisher    Publisher
	currencies   money.CurrencySet
	cacheTTL     time.Duration
	now          func() time.Time

	mu          sync.Mutex
	cache       map[uuid.UUID]cachedSnapshot
	generations map[uuid.UUID]uint64
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher publishes a CommittedEvent after every successful commit.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCurrencies restricts drafts and accounts to the codes in set.
// The default set is money.DefaultRates plus the base currency.
func WithCurrencies(set money.CurrencySet) Option {
	return func(s *Service) { s.currencies = set }
}

// WithCacheTTL keeps snapshots in memory for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new ledger service
func NewService(repo Repository, logger *slog.Logger, baseCurrency string, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		logger:       logger,
		baseCurrency: strings.ToUpper(baseCurrency),
		now:          time.Now,
		cache:        make(map[uuid.UUID]cachedSnapshot),
		generations:  make(map[uuid.UUID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.currencies == nil {
		s.currencies = money.NewFixedRateConverter(s.baseCurrency, money.DefaultRates)
	}
	return s
}

// BaseCurrency returns the reporting currency used for new ledgers.
func (s *Service) BaseCurrency() string {
	return s.baseCurrency
}

// Snapshot returns a private copy of the user's ledger. A user without a
// ledger gets an empty one in the default base currency.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	snap, generation, ok := s.cached(userID)
	if ok {
		return snap, nil
	}

	snap, err := s.repo.GetSnapshot(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		snap = &Snapshot{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if snap.BaseCurrency == "" {
		snap.BaseCurrency = s.baseCurrency
	}

	if s.cacheTTL > 0 {
		s.mu.Lock()
		// A write since the load started makes this snapshot stale.
		if s.generations[userID] == generation {
			s.cache[userID] = cachedSnapshot{snapshot: snap.Clone(), loadedAt: s.now()}
		}
		s.mu.Unlock()
	}
	return snap, nil
}

// cached returns a fresh cache entry, or the user's write generation to
// check before storing a newly loaded snapshot.
func (s *Service) cached(userID uuid.UUID) (*Snapshot, uint64, bool) {
	if s.cacheTTL <= 0 {
		return nil, 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[userID]
	if !ok || s.now().Sub(entry.loadedAt) > s.cacheTTL {
		return nil, s.generations[userID], false
	}
	return entry.snapshot.Clone(), 0, true
}

func (s *Service) invalidate(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, userID)
	s.generations[userID]++
	s.mu.Unlock()
}

// PruneSnapshots drops expired cache entries and returns how many were removed.
func (s *Service) PruneSnapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.cache {
		if now.Sub(entry.loadedAt) > s.cacheTTL {
			delete(s.cache, id)
			removed++
		}
	}
	return removed
}

// Commit materializes a draft: it assigns an identifier and timestamps,
// persists the record and publishes a CommittedEvent.
func (s *Service) Commit(ctx context.Context, userID uuid.UUID, draft Draft) (*Receipt, error) {
	if err := s.repo.EnsureLedger(ctx, userID, s.baseCurrency); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	receipt := &Receipt{ID: uuid.New(), Type: draft.Type, CreatedAt: now}

	switch draft.Type {
	case DraftTypeTransaction:
		tx, err := s.materializeTransaction(draft.Transaction, receipt)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreateTransaction(ctx, userID, tx); err != nil {
			return nil, err
		}
	case DraftTypeGoal:
		goal, err := s.materializeGoal(draft.Goal, receipt)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreateGoal(ctx, userID, goal); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown draft type %q", ErrInvalidDraft, draft.Type)
	}

	s.invalidate(userID)
	s.logger.Info("draft committed", "userID", userID.String(), "type", draft.Type, "id", receipt.ID.String())

	if s.publisher != nil {
		event := CommittedEvent{ID: receipt.ID, UserID: userID, Type: draft.Type, Draft: &draft, CreatedAt: now}
		if err := s.publisher.Publish(ctx, EventDraftCommitted, event); err != nil {
			s.logger.Warn("failed to publish commit event", "id", receipt.ID.String(), "error", err)
		}
	}

	return receipt, nil
}

func (s *Service) materializeTransaction(d *TransactionDraft, receipt *Receipt) (*Transaction, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: missing transaction data", ErrInvalidDraft)
	}
	if !d.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidDraft, d.Type)
	}
	if !d.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidDraft)
	}
	currency := strings.ToUpper(d.Currency)
	if !s.currencies.Supports(currency) {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidDraft, money.ErrUnsupportedCurrency, d.Currency)
	}

	date := d.Date
	if date.IsZero() {
		date = receipt.CreatedAt
	}
	category := d.Category
	if category == "" {
		category = "Misc"
	}

	return &Transaction{
		ID:        receipt.ID,
		AccountID: d.AccountID,
		Type:      d.Type,
		Amount:    d.Amount,
		Currency:  currency,
		Category:  category,
		Note:      d.Note,
		Date:      date,
		CreatedAt: receipt.CreatedAt,
	}, nil
}

func (s *Service) materializeGoal(d *GoalDraft, receipt *Receipt) (*Goal, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: missing goal data", ErrInvalidDraft)
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("%w: goal name is required", ErrInvalidDraft)
	}
	if !d.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: target amount must be positive", ErrInvalidDraft)
	}
	if d.CurrentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: current amount cannot be negative", ErrInvalidDraft)
	}
	currency := strings.ToUpper(d.Currency)
	if !s.currencies.Supports(currency) {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidDraft, money.ErrUnsupportedCurrency, d.Currency)
	}

	status := d.Status
	if status == "" {
		status = GoalStatusActive
	}

	return &Goal{
		ID:            receipt.ID,
		Name:          strings.TrimSpace(d.Name),
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		Currency:      currency,
		Status:        status,
		CreatedAt:     receipt.CreatedAt,
	}, nil
}

// CreateAccount adds an account to the user's ledger.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name, currency string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("account name is required")
	}
	currency = strings.ToUpper(currency)
	if !s.currencies.Supports(currency) {
		return nil, fmt.Errorf("%w: %q", money.ErrUnsupportedCurrency, currency)
	}
	if err := s.repo.EnsureLedger(ctx, userID, s.baseCurrency); err != nil {
		return nil, err
	}

	account := &Account{ID: uuid.New(), Name: name, Currency: currency}
	if err := s.repo.CreateAccount(ctx, userID, account); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return account, nil
}
