package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/scoring"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// app config; provider credentials and models live with their provider packages
type Config struct {
	Port           string   `env:"PORT" envDefault:"8086"`
	Provider       string   `env:"AI_PROVIDER" envDefault:"openai"`
	ProviderMode   llm.Mode `env:"AI_PROVIDER_MODE" envDefault:"auto"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	Timeouts Timeouts
	Breaker  Breaker `envPrefix:"BREAKER_"`

	Heuristic scoring.Thresholds `envPrefix:"HEURISTIC_"`

	StoreBackend string   `env:"STORE_BACKEND" envDefault:"memory"`
	Postgres     Postgres `envPrefix:"POSTGRES_"`
	SQLitePath   string   `env:"SQLITE_PATH" envDefault:"interviews.db"`
	Mongo        Mongo    `envPrefix:"MONGO_"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	SessionLockTTL time.Duration `env:"SESSION_LOCK_TTL" envDefault:"60s"`
	EventsChannel  string        `env:"EVENTS_CHANNEL" envDefault:"interview_completed"`

	Jobs Jobs
}

type Timeouts struct {
	FirstQuestion time.Duration `env:"FIRST_QUESTION_TIMEOUT" envDefault:"30s"`
	NextQuestion  time.Duration `env:"NEXT_QUESTION_TIMEOUT" envDefault:"15s"`
	Evaluation    time.Duration `env:"EVALUATION_TIMEOUT" envDefault:"45s"`
}

type Breaker struct {
	MaxFailures uint32        `env:"MAX_FAILURES" envDefault:"5"`
	OpenTimeout time.Duration `env:"OPEN_TIMEOUT" envDefault:"30s"`
}

type Postgres struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	DB       string `env:"DB" envDefault:"mockinterview"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN builds a libpq keyword/value connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

type Mongo struct {
	URI        string `env:"URI" envDefault:"mongodb://localhost:27017"`
	DB         string `env:"DB" envDefault:"mockinterview"`
	Collection string `env:"COLLECTION" envDefault:"interview_sessions"`
}

type Jobs struct {
	AbandonSchedule string        `env:"ABANDON_SWEEP_SCHEDULE" envDefault:"@every 10m"`
	AbandonAfter    time.Duration `env:"ABANDON_AFTER" envDefault:"2h"`

	ExportEnabled   bool   `env:"TRANSCRIPT_EXPORT_ENABLED" envDefault:"false"`
	ExportSchedule  string `env:"TRANSCRIPT_EXPORT_SCHEDULE" envDefault:"0 2 * * *"`
	ExportDirectory string `env:"TRANSCRIPT_EXPORT_DIR" envDefault:"./exports"`
	ExportBatchSize int    `env:"TRANSCRIPT_EXPORT_BATCH_SIZE" envDefault:"500"`
}

// loads configuration from an optional .env file and the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))
	if config.Provider == ProviderMock {
		config.ProviderMode = llm.ModeForceFallback
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// RemoteProvider names the registry entry to try first, empty for offline mode.
func (c *Config) RemoteProvider() string {
	if c.Provider == ProviderMock {
		return ""
	}
	return c.Provider
}

func validateConfig(config *Config) error {
	switch config.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderMock:
	default:
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: openai, gemini, mock")
	}

	switch config.ProviderMode {
	case llm.ModeAuto, llm.ModeForceFallback:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER_MODE %q: expected auto or forceFallback", config.ProviderMode)
	}

	switch config.StoreBackend {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", config.StoreBackend)
	}

	if config.Timeouts.FirstQuestion <= 0 || config.Timeouts.NextQuestion <= 0 || config.Timeouts.Evaluation <= 0 {
		return errors.New("question and evaluation timeouts must be positive")
	}
	if config.Heuristic.MinLength < 0 || config.Heuristic.StrongLength < config.Heuristic.MinLength {
		return errors.New("HEURISTIC_STRONG_LENGTH must not be below HEURISTIC_MIN_LENGTH")
	}
	if config.Jobs.ExportBatchSize <= 0 {
		return errors.New("TRANSCRIPT_EXPORT_BATCH_SIZE must be positive")
	}
	return nil
}
