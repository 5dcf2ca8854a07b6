// Package handler exposes the assistant and the ledger over JSON HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FACorreiaa/echo-assistant/internal/domain/assistant"
	"github.com/FACorreiaa/echo-assistant/internal/domain/ledger"
	"github.com/FACorreiaa/echo-assistant/pkg/metrics"
	"github.com/FACorreiaa/echo-assistant/pkg/money"
)

// UserIDHeader carries the caller's ledger identifier.
const UserIDHeader = "X-User-ID"

const (
	maxBodyBytes     = 64 << 10
	maxUtteranceRune = 1000
)

// LedgerService is the part of ledger.Service used by the handlers.
type LedgerService interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*ledger.Snapshot, error)
	Commit(ctx context.Context, userID uuid.UUID, draft ledger.Draft) (*ledger.Receipt, error)
}

// Config holds the per-request defaults.
type Config struct {
	DefaultLanguage assistant.Language
	DefaultCurrency string
	// DemoUserID is used when a request has no X-User-ID header. uuid.Nil
	// makes the header mandatory.
	DemoUserID uuid.UUID
	// Currencies accepted in requests. Defaults to money.DefaultRates plus
	// DefaultCurrency.
	Currencies money.CurrencySet
}

// AssistantHandler serves the interpret, drafts and ledger endpoints.
type AssistantHandler struct {
	engine  assistant.Interpreter
	ledger  LedgerService
	metrics *metrics.Metrics
	cfg     Config
	logger  *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(engine assistant.Interpreter, ledgerSvc LedgerService, m *metrics.Metrics, cfg Config, logger *slog.Logger) *AssistantHandler {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = assistant.Spanish
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = money.COP
	}
	if cfg.Currencies == nil {
		cfg.Currencies = money.NewFixedRateConverter(cfg.DefaultCurrency, money.DefaultRates)
	}
	return &AssistantHandler{
		engine:  engine,
		ledger:  ledgerSvc,
		metrics: m,
		cfg:     cfg,
		logger:  logger,
	}
}

// Register mounts the routes on mux.
func (h *AssistantHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /v1/interpret", h.metrics.Middleware("interpret", http.HandlerFunc(h.Interpret)))
	mux.Handle("POST /v1/drafts", h.metrics.Middleware("drafts", http.HandlerFunc(h.CommitDraft)))
	mux.Handle("GET /v1/ledger", h.metrics.Middleware("ledger", http.HandlerFunc(h.Ledger)))
	mux.HandleFunc("GET /healthz", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// InterpretRequest is the body of POST /v1/interpret.
type InterpretRequest struct {
	Utterance string `json:"utterance"`
	Language  string `json:"language,omitempty"`
	Currency  string `json:"currency,omitempty"`
	History   string `json:"history,omitempty"`
}

// CommitRequest is the body of POST /v1/drafts.
type CommitRequest struct {
	Draft *ledger.Draft `json:"draft"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Interpret handles POST /v1/interpret
func (h *AssistantHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req InterpretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if utf8.RuneCountInString(req.Utterance) > maxUtteranceRune {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("utterance exceeds %d characters", maxUtteranceRune))
		return
	}

	currency := h.cfg.DefaultCurrency
	if req.Currency != "" {
		currency = strings.ToUpper(strings.TrimSpace(req.Currency))
		if !h.cfg.Currencies.Supports(currency) {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", money.ErrUnsupportedCurrency, currency))
			return
		}
	}

	snap, err := h.ledger.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load ledger", "userID", userID.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to load ledger"))
		return
	}

	res, err := h.engine.Interpret(r.Context(), req.Utterance, assistant.Context{
		DefaultLanguage: assistant.ParseLanguage(req.Language, h.cfg.DefaultLanguage),
		DefaultCurrency: currency,
		Ledger:          snap,
		History:         req.History,
	})
	if err != nil {
		h.logger.Error("failed to interpret utterance", "userID", userID.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to interpret utterance"))
		return
	}

	h.logger.Debug("utterance interpreted", "userID", userID.String(), "intent", res.Intent, "lang", res.Lang)
	h.writeJSON(w, http.StatusOK, res)
}

// CommitDraft handles POST /v1/drafts
func (h *AssistantHandler) CommitDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req CommitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Draft == nil {
		h.writeError(w, http.StatusBadRequest, errors.New("draft is required"))
		return
	}

	receipt, err := h.ledger.Commit(r.Context(), userID, *req.Draft)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidDraft) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to commit draft", "userID", userID.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to commit draft"))
		return
	}

	h.metrics.IncCommitted(string(receipt.Type))
	h.writeJSON(w, http.StatusCreated, receipt)
}

// Ledger handles GET /v1/ledger
func (h *AssistantHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := h.ledger.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load ledger", "userID", userID.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to load ledger"))
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// Health handles GET /healthz
func (h *AssistantHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AssistantHandler) userID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		if h.cfg.DemoUserID != uuid.Nil {
			return h.cfg.DemoUserID, nil
		}
		return uuid.Nil, fmt.Errorf("%s header is required", UserIDHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s header: %w", UserIDHeader, err)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *AssistantHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

func (h *AssistantHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
