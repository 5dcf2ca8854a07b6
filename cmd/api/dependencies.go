package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/echo-assistant/internal/domain/assistant"
	"github.com/FACorreiaa/echo-assistant/internal/domain/assistant/handler"
	"github.com/FACorreiaa/echo-assistant/internal/domain/ledger"
	"github.com/FACorreiaa/echo-assistant/pkg/config"
	"github.com/FACorreiaa/echo-assistant/pkg/cron"
	"github.com/FACorreiaa/echo-assistant/pkg/db"
	"github.com/FACorreiaa/echo-assistant/pkg/metrics"
	"github.com/FACorreiaa/echo-assistant/pkg/middleware"
	"github.com/FACorreiaa/echo-assistant/pkg/money"
	"github.com/FACorreiaa/echo-assistant/pkg/queue"
)

const (
	rateLimitCleanupSchedule = "*/10 * * * *"
	rateLimitIdle            = 10 * time.Minute
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	DemoUserID uuid.UUID

	// Repositories
	LedgerRepo ledger.Repository

	// Services
	Publisher     *queue.Publisher
	LedgerService *ledger.Service
	Converter     *money.FixedRateConverter
	Engine        assistant.Interpreter
	Scheduler     *cron.Scheduler
	RateLimiter   *middleware.RateLimiter

	// Handlers
	AssistantHandler *handler.AssistantHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if cfg.Ledger.DemoUserID != "" {
		id, err := uuid.Parse(cfg.Ledger.DemoUserID)
		if err != nil {
			return nil, fmt.Errorf("invalid LEDGER_DEMO_USER_ID: %w", err)
		}
		deps.DemoUserID = id
	}
	if deps.DemoUserID == uuid.Nil && cfg.Ledger.SeedFile != "" {
		deps.DemoUserID = uuid.New()
		logger.Warn("LEDGER_DEMO_USER_ID not set, seeding a generated user", "userID", deps.DemoUserID.String())
	}

	if cfg.Ledger.Backend == config.LedgerPostgres {
		if err := deps.initDatabase(); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initRepositories(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	if err := deps.seedLedger(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to seed ledger: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		"engine", cfg.Assistant.Engine,
		"ledger", cfg.Ledger.Backend)

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if d.Config.Database.RunMigrations {
		if err := d.DB.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	d.Logger.Info("database connected")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	switch d.Config.Ledger.Backend {
	case config.LedgerPostgres:
		d.LedgerRepo = ledger.NewPostgresRepository(d.DB.Pool)
	default:
		d.LedgerRepo = ledger.NewMemoryRepository()
	}

	d.Logger.Info("repositories initialized", "backend", d.Config.Ledger.Backend)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	d.Converter = money.NewFixedRateConverter(d.Config.Assistant.BaseCurrency, d.Config.Assistant.Rates)

	opts := []ledger.Option{
		ledger.WithCacheTTL(d.Config.Ledger.CacheTTL),
		ledger.WithCurrencies(d.Converter),
	}
	if d.Config.Queue.URL != "" {
		publisher, err := queue.NewPublisher(d.Config.Queue.URL, d.Config.Queue.Exchange, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to init queue publisher: %w", err)
		}
		d.Publisher = publisher
		opts = append(opts, ledger.WithPublisher(publisher))
	}
	d.LedgerService = ledger.NewService(d.LedgerRepo, d.Logger, d.Config.Assistant.BaseCurrency, opts...)

	engine, err := d.newEngine(ctx)
	if err != nil {
		return err
	}
	d.Engine = engine

	d.Scheduler = cron.NewScheduler(d.LedgerService, d.Config.Ledger.PruneSchedule, d.Logger)
	d.RateLimiter = middleware.NewRateLimiter(
		d.Config.Server.RateLimitPerSecond,
		d.Config.Server.RateLimitBurst,
		middleware.RemoteIP,
		d.Logger,
	)
	if err := d.Scheduler.AddJob(rateLimitCleanupSchedule, "ratelimit-cleanup", func() int {
		return d.RateLimiter.Cleanup(rateLimitIdle)
	}); err != nil {
		return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
	}

	d.Logger.Info("services initialized")
	return nil
}

// newEngine builds the interpreter for the configured engine mode.
func (d *Dependencies) newEngine(ctx context.Context) (assistant.Interpreter, error) {
	local := assistant.NewLocalEngine(d.Converter, d.Logger,
		assistant.WithThinkingDelay(d.Config.Assistant.ThinkingDelay),
		assistant.WithTypoTolerance(d.Config.Assistant.TypoTolerance))

	mode := d.Config.Assistant.Engine
	if mode == config.EngineLocal {
		return assistant.NewInstrumentedEngine(local, local.Name(), d.Metrics), nil
	}

	gemini := d.Config.Gemini
	remote, err := assistant.NewRemoteEngine(ctx, gemini.APIKey, gemini.Model, gemini.Timeout, local.Analyzer(), d.Converter)
	if err != nil {
		return nil, fmt.Errorf("failed to init remote engine: %w", err)
	}
	if mode == config.EngineRemote {
		return assistant.NewInstrumentedEngine(remote, remote.Name(), d.Metrics), nil
	}
	return assistant.NewInstrumentedEngine(
		assistant.NewFallbackEngine(remote, local, d.Metrics, d.Logger),
		config.EngineHybrid,
		d.Metrics,
	), nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.AssistantHandler = handler.NewAssistantHandler(d.Engine, d.LedgerService, d.Metrics, handler.Config{
		DefaultLanguage: assistant.ParseLanguage(d.Config.Assistant.DefaultLanguage, assistant.Spanish),
		DefaultCurrency: d.Config.Assistant.DefaultCurrency,
		DemoUserID:      d.DemoUserID,
		Currencies:      d.Converter,
	}, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// seedLedger imports the configured CSV into the demo user's ledger.
func (d *Dependencies) seedLedger(ctx context.Context) error {
	path := d.Config.Ledger.SeedFile
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := d.LedgerService.Import(ctx, d.DemoUserID, f)
	if err != nil {
		return err
	}
	for _, rowErr := range result.Errors {
		d.Logger.Warn("skipped seed row", "row", rowErr.Row, "column", rowErr.Column, "error", rowErr.Message)
	}
	d.Logger.Info("ledger seeded",
		"userID", d.DemoUserID.String(),
		"imported", result.Imported,
		"accounts", result.Accounts,
		"skipped", len(result.Errors))
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Warn("failed to close queue publisher", "error", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
