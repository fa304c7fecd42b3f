package app

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/neurobridge-ledger/internal/data/db"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/board"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/debounce"
	"github.com/yungbote/neurobridge-ledger/internal/observability"
	"github.com/yungbote/neurobridge-ledger/internal/platform/envutil"
	"github.com/yungbote/neurobridge-ledger/internal/platform/redisx"
)

type Config struct {
	LogMode  string
	HTTPAddr string

	DB    db.Config
	Redis redisx.Config
	// BusPrefix namespaces pub/sub channels when several deployments share a redis.
	BusPrefix string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	AllowedOrigins []string

	ProgressCacheTTL time.Duration
	Debounce         debounce.Config

	PointsRulesFile string
	PointsBoardCron string
	PointsConsumers int
	BoardLocation   *time.Location

	Otel observability.OtelConfig
}

// LoadEnvFiles applies the first existing .env-style files to the process
// environment. Variables already set win over file values.
func LoadEnvFiles(paths ...string) error {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		present = append(present, p)
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

func LoadConfig() Config {
	loc, err := time.LoadLocation(envutil.String("POINTS_BOARD_TZ", "Local"))
	if err != nil {
		loc = time.Local
	}
	return Config{
		LogMode:  envutil.String("LOG_MODE", "development"),
		HTTPAddr: envutil.String("HTTP_ADDR", ":8080"),

		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", "postgres"),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "ledger"),
			SQLitePath: envutil.String("SQLITE_PATH", ""),
		},
		Redis: redisx.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		BusPrefix: envutil.String("BUS_CHANNEL_PREFIX", "ledger"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		ProgressCacheTTL: envutil.Duration("PROGRESS_CACHE_TTL", time.Minute),
		Debounce: debounce.Config{
			Window:     envutil.Duration("PROGRESS_DEBOUNCE_WINDOW", debounce.DefaultWindow),
			MaxPending: envutil.Int("PROGRESS_DEBOUNCE_MAX_PENDING", debounce.DefaultMaxPending),
		},

		PointsRulesFile: envutil.String("POINTS_RULES_FILE", ""),
		PointsBoardCron: envutil.String("POINTS_BOARD_CRON", board.DefaultSpec),
		PointsConsumers: envutil.Int("POINTS_CONSUMER_CONCURRENCY", 4),
		BoardLocation:   loc,

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "neurobridge-ledger"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
