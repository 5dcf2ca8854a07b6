// Package ledger holds the user's accounts, transactions and savings goals.
// It provides read-only snapshots for analysis and materializes drafts
// produced by the assistant.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType is the direction of a transaction
type TxType string

const (
	TxTypeIncome     TxType = "income"
	TxTypeExpense    TxType = "expense"
	TxTypeAdjustment TxType = "adjustment"
)

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	switch t {
	case TxTypeIncome, TxTypeExpense, TxTypeAdjustment:
		return true
	}
	return false
}

// GoalStatus represents the status of a goal
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusArchived  GoalStatus = "archived"
)

// Account is a place money lives in (bank account, wallet, cash).
type Account struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
}

// Transaction is a single ledger entry. Amount is always non-negative;
// the direction is carried by Type.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID *uuid.UUID      `json:"accountId,omitempty"`
	Type      TxType          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Category  string          `json:"category"`
	Note      string          `json:"note,omitempty"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Goal is a savings goal.
type Goal struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Currency      string          `json:"currency"`
	Status        GoalStatus      `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Snapshot is an immutable view of a user's ledger taken at one point in time.
type Snapshot struct {
	BaseCurrency string        `json:"baseCurrency"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Goals        []Goal        `json:"goals,omitempty"`
}

// Clone returns a deep copy so callers can never mutate shared state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		BaseCurrency: s.BaseCurrency,
		Accounts:     append([]Account(nil), s.Accounts...),
		Transactions: make([]Transaction, len(s.Transactions)),
		Goals:        append([]Goal(nil), s.Goals...),
	}
	for i, tx := range s.Transactions {
		if tx.AccountID != nil {
			id := *tx.AccountID
			tx.AccountID = &id
		}
		out.Transactions[i] = tx
	}
	return out
}

// DraftType tags the payload carried by a Draft.
type DraftType string

const (
	DraftTypeTransaction DraftType = "transaction"
	DraftTypeGoal        DraftType = "goal"
)

// TransactionDraft is an unpersisted transaction awaiting confirmation.
type TransactionDraft struct {
	Type      TxType          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Category  string          `json:"category"`
	Note      string          `json:"note"`
	Date      time.Time       `json:"date"`
	AccountID *uuid.UUID      `json:"accountId,omitempty"`
}

// GoalDraft is an unpersisted savings goal awaiting confirmation.
type GoalDraft struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Currency      string          `json:"currency"`
	Status        GoalStatus      `json:"status"`
}

// Draft is a tagged union of TransactionDraft and GoalDraft.
// On the wire it is {"type": "...", "data": {...}}.
type Draft struct {
	Type        DraftType
	Transaction *TransactionDraft
	Goal        *GoalDraft
}

// NewTransactionDraft wraps a transaction draft.
func NewTransactionDraft(d TransactionDraft) *Draft {
	return &Draft{Type: DraftTypeTransaction, Transaction: &d}
}

// NewGoalDraft wraps a goal draft.
func NewGoalDraft(d GoalDraft) *Draft {
	return &Draft{Type: DraftTypeGoal, Goal: &d}
}

type wireDraft struct {
	Type DraftType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (d Draft) MarshalJSON() ([]byte, error) {
	var data any
	switch d.Type {
	case DraftTypeTransaction:
		data = d.Transaction
	case DraftTypeGoal:
		data = d.Goal
	default:
		return nil, fmt.Errorf("%w: unknown draft type %q", ErrInvalidDraft, d.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireDraft{Type: d.Type, Data: raw})
}

func (d *Draft) UnmarshalJSON(b []byte) error {
	var w wireDraft
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Type {
	case DraftTypeTransaction:
		var tx TransactionDraft
		if err := json.Unmarshal(w.Data, &tx); err != nil {
			return fmt.Errorf("decode transaction draft: %w", err)
		}
		*d = Draft{Type: w.Type, Transaction: &tx}
	case DraftTypeGoal:
		var g GoalDraft
		if err := json.Unmarshal(w.Data, &g); err != nil {
			return fmt.Errorf("decode goal draft: %w", err)
		}
		*d = Draft{Type: w.Type, Goal: &g}
	default:
		return fmt.Errorf("%w: unknown draft type %q", ErrInvalidDraft, w.Type)
	}
	return nil
}
