package config

import (
	"testing"
	"time"

	"mockinterview/ai/internal/llm"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("expected provider openai, got %s", cfg.Provider)
	}
	if cfg.ProviderMode != llm.ModeAuto {
		t.Fatalf("expected auto mode, got %s", cfg.ProviderMode)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Fatalf("expected memory store, got %s", cfg.StoreBackend)
	}
	if cfg.Timeouts.FirstQuestion != 30*time.Second || cfg.Timeouts.NextQuestion != 15*time.Second || cfg.Timeouts.Evaluation != 45*time.Second {
		t.Fatalf("unexpected timeouts %+v", cfg.Timeouts)
	}
	if cfg.Heuristic.MinLength != 20 || cfg.Heuristic.StrongLength != 100 {
		t.Fatalf("unexpected heuristic defaults %+v", cfg.Heuristic)
	}
	if cfg.RemoteProvider() != ProviderOpenAI {
		t.Fatalf("expected openai remote, got %q", cfg.RemoteProvider())
	}
}

func TestLoadConfig_MockForcesFallback(t *testing.T) {
	t.Setenv("AI_PROVIDER", "Mock")
	t.Setenv("AI_PROVIDER_MODE", "auto")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ProviderMode != llm.ModeForceFallback {
		t.Fatalf("expected forceFallback, got %s", cfg.ProviderMode)
	}
	if cfg.RemoteProvider() != "" {
		t.Fatalf("expected no remote provider, got %q", cfg.RemoteProvider())
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("NEXT_QUESTION_TIMEOUT", "5s")
	t.Setenv("HEURISTIC_MIN_LENGTH", "10")
	t.Setenv("HEURISTIC_LOW_CONFIDENCE_PHRASES", "no idea,pass")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("BREAKER_MAX_FAILURES", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Timeouts.NextQuestion != 5*time.Second {
		t.Fatalf("expected 5s next question timeout, got %s", cfg.Timeouts.NextQuestion)
	}
	if cfg.Heuristic.MinLength != 10 || len(cfg.Heuristic.LowConfidence) != 2 || cfg.Heuristic.LowConfidence[1] != "pass" {
		t.Fatalf("unexpected heuristic overrides %+v", cfg.Heuristic)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.Breaker.MaxFailures != 3 {
		t.Fatalf("expected 3 breaker failures, got %d", cfg.Breaker.MaxFailures)
	}
	if got := cfg.Postgres.DSN(); got != "host=db port=5432 user=postgres password= dbname=mockinterview sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestLoadConfig_UnsupportedProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "unknown")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfig_UnsupportedMode(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_PROVIDER_MODE", "sometimes")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider mode")
	}
}

func TestLoadConfig_UnsupportedStore(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("STORE_BACKEND", "cassandra")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported store backend")
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("EVALUATION_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unparsable timeout")
	}
}
