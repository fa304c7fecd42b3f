package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-ledger/internal/jobs/board"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/debounce"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PROGRESS_DEBOUNCE_WINDOW", "")
	cfg := LoadConfig()

	if cfg.Debounce.Window != debounce.DefaultWindow || cfg.Debounce.MaxPending != debounce.DefaultMaxPending {
		t.Fatalf("debounce defaults: %+v", cfg.Debounce)
	}
	if cfg.ProgressCacheTTL != time.Minute {
		t.Fatalf("cache ttl: %v", cfg.ProgressCacheTTL)
	}
	if cfg.PointsBoardCron != board.DefaultSpec {
		t.Fatalf("cron: %q", cfg.PointsBoardCron)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without REDIS_ADDR")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PROGRESS_DEBOUNCE_WINDOW", "5s")
	t.Setenv("PROGRESS_DEBOUNCE_MAX_PENDING", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "k=v")
	cfg := LoadConfig()

	if cfg.Debounce.Window != 5*time.Second || cfg.Debounce.MaxPending != 10 {
		t.Fatalf("debounce overrides: %+v", cfg.Debounce)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins: %v", cfg.AllowedOrigins)
	}
	if cfg.DB.Driver != "sqlite" || cfg.Otel.Headers["k"] != "v" {
		t.Fatalf("db/otel: %+v %+v", cfg.DB, cfg.Otel)
	}
}

func TestLoadEnvFilesKeepsProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "LEDGER_ENV_FILE_ONLY=from-file\nLEDGER_ENV_BOTH=from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LEDGER_ENV_BOTH", "from-process")
	t.Setenv("LEDGER_ENV_FILE_ONLY", "")
	os.Unsetenv("LEDGER_ENV_FILE_ONLY")

	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	if got := os.Getenv("LEDGER_ENV_FILE_ONLY"); got != "from-file" {
		t.Fatalf("file value not applied: %q", got)
	}
	if got := os.Getenv("LEDGER_ENV_BOTH"); got != "from-process" {
		t.Fatalf("process value overwritten: %q", got)
	}
}
