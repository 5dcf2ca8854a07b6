package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

// DBTX is the subset of pgxpool.Pool used by the repository.
// pgxmock pools satisfy it as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PostgresRepository implements Repository using PostgreSQL.
// Amounts are stored in minor units next to their currency code.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL ledger repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetSnapshot reads the whole ledger inside one read-only repeatable-read
// transaction so every section reflects the same point in time.
func (r *PostgresRepository) GetSnapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snap := &Snapshot{}

	err = tx.QueryRow(ctx, `SELECT base_currency FROM ledger_settings WHERE user_id = $1`, userID).
		Scan(&snap.BaseCurrency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger settings: %w", err)
	}

	if snap.Accounts, err = r.listAccounts(ctx, tx, userID); err != nil {
		return nil, err
	}
	if snap.Transactions, err = r.listTransactions(ctx, tx, userID); err != nil {
		return nil, err
	}
	if snap.Goals, err = r.listGoals(ctx, tx, userID); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *PostgresRepository) listAccounts(ctx context.Context, q pgx.Tx, userID uuid.UUID) ([]Account, error) {
	query := `
		SELECT id, name, currency_code
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresRepository) listTransactions(ctx context.Context, q pgx.Tx, userID uuid.UUID) ([]Transaction, error) {
	query := `
		SELECT id, account_id, type, amount_minor, currency_code, category, note, occurred_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at, created_at`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var (
			t           Transaction
			txType      string
			amountMinor int64
		)
		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&txType,
			&amountMinor,
			&t.Currency,
			&t.Category,
			&t.Note,
			&t.Date,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = TxType(txType)
		t.Amount = money.New(amountMinor, t.Currency).ToDecimal()
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *PostgresRepository) listGoals(ctx context.Context, q pgx.Tx, userID uuid.UUID) ([]Goal, error) {
	query := `
		SELECT id, name, target_amount_minor, current_amount_minor, currency_code, status, created_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var (
			g                     Goal
			status                string
			targetMinor, currentMinor int64
		)
		err := rows.Scan(&g.ID, &g.Name, &targetMinor, &currentMinor, &g.Currency, &status, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.Status = GoalStatus(status)
		g.TargetAmount = money.New(targetMinor, g.Currency).ToDecimal()
		g.CurrentAmount = money.New(currentMinor, g.Currency).ToDecimal()
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// CreateTransaction inserts a new transaction
func (r *PostgresRepository) CreateTransaction(ctx context.Context, userID uuid.UUID, tx *Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, type, amount_minor, currency_code, category, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		userID,
		tx.AccountID,
		string(tx.Type),
		money.NewFromDecimal(tx.Amount, tx.Currency).Amount(),
		tx.Currency,
		tx.Category,
		tx.Note,
		tx.Date,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateGoal inserts a new goal
func (r *PostgresRepository) CreateGoal(ctx context.Context, userID uuid.UUID, goal *Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, target_amount_minor, current_amount_minor, currency_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		goal.ID,
		userID,
		goal.Name,
		money.NewFromDecimal(goal.TargetAmount, goal.Currency).Amount(),
		money.NewFromDecimal(goal.CurrentAmount, goal.Currency).Amount(),
		goal.Currency,
		string(goal.Status),
		goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// CreateAccount inserts a new account
func (r *PostgresRepository) CreateAccount(ctx context.Context, userID uuid.UUID, account *Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, currency_code)
		VALUES ($1, $2, $3, $4)`

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query, account.ID, userID, account.Name, account.Currency)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// EnsureLedger creates the settings row for a user when missing.
func (r *PostgresRepository) EnsureLedger(ctx context.Context, userID uuid.UUID, baseCurrency string) error {
	query := `
		INSERT INTO ledger_settings (user_id, base_currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, baseCurrency); err != nil {
		return fmt.Errorf("failed to ensure ledger: %w", err)
	}
	return nil
}
