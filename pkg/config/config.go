package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Engine modes for the assistant.
const (
	EngineLocal  = "local"
	EngineRemote = "remote"
	EngineHybrid = "hybrid"
)

// Ledger storage backends.
const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Assistant     AssistantConfig
	Ledger        LedgerConfig
	Queue         QueueConfig
	Gemini        GeminiConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type ServerConfig struct {
	Host               string
	Port               int
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxConns      int
	RunMigrations bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       string
}

// AssistantConfig controls the interpreter.
type AssistantConfig struct {
	Engine          string
	DefaultLanguage string
	DefaultCurrency string
	BaseCurrency    string
	// Rates maps a currency code to its value in BaseCurrency.
	Rates         map[string]decimal.Decimal
	ThinkingDelay time.Duration
	// TypoTolerance accepts category keywords misspelled by one edit.
	TypoTolerance bool
}

type LedgerConfig struct {
	Backend       string
	SeedFile      string
	DemoUserID    string
	CacheTTL      time.Duration
	PruneSchedule string
}

// QueueConfig configures the AMQP publisher. An empty URL disables it.
type QueueConfig struct {
	URL      string
	Exchange string
}

// Load reads configuration from environment variables, loading a .env file
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:          getEnv("POSTGRES_HOST", "localhost"),
			Port:          getEnvAsInt("POSTGRES_PORT", 5469),
			User:          getEnv("POSTGRES_USER", "postgres"),
			Password:      getEnv("POSTGRES_PASSWORD", "postgres"),
			Database:      getEnv("POSTGRES_DB", "echo-dev"),
			SSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("POSTGRES_MAX_CONNS", 10),
			RunMigrations: getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
		Assistant: AssistantConfig{
			Engine:          strings.ToLower(getEnv("ASSISTANT_ENGINE", EngineLocal)),
			DefaultLanguage: strings.ToLower(getEnv("ASSISTANT_DEFAULT_LANGUAGE", "es")),
			DefaultCurrency: strings.ToUpper(getEnv("ASSISTANT_DEFAULT_CURRENCY", "COP")),
			BaseCurrency:    strings.ToUpper(getEnv("ASSISTANT_BASE_CURRENCY", "COP")),
			Rates: map[string]decimal.Decimal{
				"COP": getEnvAsDecimal("RATE_COP", decimal.NewFromInt(1)),
				"USD": getEnvAsDecimal("RATE_USD", decimal.NewFromInt(4000)),
				"EUR": getEnvAsDecimal("RATE_EUR", decimal.NewFromInt(4300)),
			},
			ThinkingDelay: getEnvAsDuration("ASSISTANT_THINKING_DELAY", 0),
			TypoTolerance: getEnvAsBool("ASSISTANT_TYPO_TOLERANCE", false),
		},
		Ledger: LedgerConfig{
			Backend:       strings.ToLower(getEnv("LEDGER_BACKEND", LedgerMemory)),
			SeedFile:      getEnv("LEDGER_SEED_FILE", ""),
			DemoUserID:    getEnv("LEDGER_DEMO_USER_ID", ""),
			CacheTTL:      getEnvAsDuration("LEDGER_CACHE_TTL", 30*time.Second),
			PruneSchedule: getEnv("LEDGER_PRUNE_SCHEDULE", "*/5 * * * *"),
		},
		Queue: QueueConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "echo.ledger"),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 15*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Assistant.Engine {
	case EngineLocal:
	case EngineRemote, EngineHybrid:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the %s engine", c.Assistant.Engine)
		}
		if c.Gemini.Model == "" {
			return errors.New("GEMINI_MODEL is required")
		}
	default:
		return fmt.Errorf("unknown ASSISTANT_ENGINE %q", c.Assistant.Engine)
	}

	switch c.Assistant.DefaultLanguage {
	case "es", "en":
	default:
		return fmt.Errorf("unsupported ASSISTANT_DEFAULT_LANGUAGE %q", c.Assistant.DefaultLanguage)
	}

	for _, code := range []string{c.Assistant.DefaultCurrency, c.Assistant.BaseCurrency} {
		if _, ok := c.Assistant.Rates[code]; !ok {
			return fmt.Errorf("no exchange rate configured for %s", code)
		}
	}

	switch c.Ledger.Backend {
	case LedgerMemory, LedgerPostgres:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.Ledger.Backend)
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if value, err := decimal.NewFromString(valueStr); err == nil && value.IsPositive() {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
