package ledger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedRow is one line of a ledger seed file.
// Expected header: date,type,amount,currency,category,note,account
type SeedRow struct {
	Date     string `csv:"date"`
	Type     string `csv:"type"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
	Category string `csv:"category"`
	Note     string `csv:"note"`
	Account  string `csv:"account"`
}

// SeedError reports a row that could not be imported
type SeedError struct {
	Row     int
	Column  string
	Message string
}

func (e SeedError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// SeedResult contains the outcome of an import
type SeedResult struct {
	Imported int
	Accounts int
	Errors   []SeedError
}

var seedDateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// ParseSeed reads seed rows from a CSV stream.
func ParseSeed(r io.Reader) ([]SeedRow, error) {
	var rows []SeedRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func (row SeedRow) transaction(rowNum int) (*Transaction, *SeedError) {
	date, err := parseSeedDate(row.Date)
	if err != nil {
		return nil, &SeedError{Row: rowNum, Column: "date", Message: err.Error()}
	}

	txType := TxType(strings.ToLower(strings.TrimSpace(row.Type)))
	if !txType.Valid() {
		return nil, &SeedError{Row: rowNum, Column: "type", Message: fmt.Sprintf("unknown type %q", row.Type)}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
	if err != nil {
		return nil, &SeedError{Row: rowNum, Column: "amount", Message: "invalid amount"}
	}

	return &Transaction{
		Type:     txType,
		Amount:   amount.Abs(),
		Currency: strings.ToUpper(strings.TrimSpace(row.Currency)),
		Category: strings.TrimSpace(row.Category),
		Note:     strings.TrimSpace(row.Note),
		Date:     date,
	}, nil
}

func parseSeedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range seedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Import loads a seed CSV into the user's ledger. Accounts are created on
// first reference by name. Invalid rows are reported and skipped.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, r io.Reader) (*SeedResult, error) {
	rows, err := ParseSeed(r)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{}
	accounts := make(map[string]uuid.UUID)

	for i, row := range rows {
		rowNum := i + 2 // 1-indexed plus header

		tx, seedErr := row.transaction(rowNum)
		if seedErr != nil {
			result.Errors = append(result.Errors, *seedErr)
			continue
		}
		if tx.Currency == "" {
			tx.Currency = s.baseCurrency
		}

		if name := strings.TrimSpace(row.Account); name != "" {
			id, ok := accounts[name]
			if !ok {
				account, err := s.CreateAccount(ctx, userID, name, tx.Currency)
				if err != nil {
					result.Errors = append(result.Errors, SeedError{Row: rowNum, Column: "account", Message: err.Error()})
					continue
				}
				id = account.ID
				accounts[name] = id
				result.Accounts++
			}
			tx.AccountID = &id
		}

		d := TransactionDraft{
			Type:      tx.Type,
			Amount:    tx.Amount,
			Currency:  tx.Currency,
			Category:  tx.Category,
			Note:      tx.Note,
			Date:      tx.Date,
			AccountID: tx.AccountID,
		}
		if _, err := s.Commit(ctx, userID, *NewTransactionDraft(d)); err != nil {
			result.Errors = append(result.Errors, SeedError{Row: rowNum, Column: "amount", Message: err.Error()})
			continue
		}
		result.Imported++
	}

	s.logger.Info("ledger seed imported",
		"userID", userID.String(),
		"imported", result.Imported,
		"accounts", result.Accounts,
		"errors", len(result.Errors),
	)
	return result, nil
}
