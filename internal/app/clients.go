package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-ledger/internal/data/db"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/platform/redisx"
)

type Clients struct {
	DB *gorm.DB
	// Redis is nil when REDIS_ADDR is unset; stores then fall back to memory.
	Redis *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	pg, err := db.NewPostgresService(log, cfg.DB)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return Clients{}, fmt.Errorf("database automigrate: %w", err)
	}

	out := Clients{DB: pg.DB()}
	if cfg.Redis.Enabled() {
		rdb, err := redisx.NewClient(ctx, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		log.Info("Redis connected", "addr", cfg.Redis.Addr)
	} else {
		log.Warn("REDIS_ADDR not set; using in-process cache, sign store, leaderboard and bus")
	}
	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
