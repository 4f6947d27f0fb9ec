package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/config"
	"github.com/bonjohen/chess-metric-analyzer/internal/storage"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

const redisStateTTL = 30 * 24 * time.Hour

// backend is the persistence chosen at startup. store is nil unless sqlite
// opened; state is never nil.
type backend struct {
	name  string
	store *storage.Store
	state uistate.Store
	close func()
}

func memoryBackend() backend {
	return backend{name: "memory", state: uistate.NewMemoryStore(), close: func() {}}
}

// openBackend connects the configured storage. Persistence is best effort:
// an unreachable backend is logged and the server continues with UI state
// kept in memory.
func openBackend(ctx context.Context, cfg *config.Server, logger *zap.SugaredLogger) backend {
	switch cfg.StorageBackend {
	case "sqlite":
		store, err := storage.NewStore(cfg.StoragePath, cfg.Dev, logger)
		if err != nil {
			logger.Warnw("sqlite unavailable, keeping UI state in memory", "path", cfg.StoragePath, "error", err)
			return memoryBackend()
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			logger.Warnw("sqlite schema failed, keeping UI state in memory", "path", cfg.StoragePath, "error", err)
			return memoryBackend()
		}
		logger.Infow("Storage enabled", "backend", "sqlite", "path", cfg.StoragePath)
		// the service closes the sqlite store on shutdown
		return backend{name: "sqlite", store: store, state: store, close: func() {}}

	case "redis":
		rs, err := storage.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, redisStateTTL)
		if err != nil {
			logger.Warnw("redis unavailable, keeping UI state in memory", "addr", cfg.RedisAddr, "error", err)
			return memoryBackend()
		}
		logger.Infow("Storage enabled", "backend", "redis", "addr", cfg.RedisAddr)
		return backend{name: "redis", state: rs, close: func() {
			if err := rs.Close(); err != nil {
				logger.Warnw("Redis close error", "error", err)
			}
		}}

	default:
		logger.Info("Persistent storage disabled, UI state kept in memory")
		return memoryBackend()
	}
}
