package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"bidscout-engine/internal/config"
	"bidscout-engine/internal/store"
)

// Open returns the Store selected by cfg.Session.Backend. The sqlite backend
// shares db with job storage.
func Open(ctx context.Context, cfg config.Config, db *store.DB) (Store, error) {
	switch cfg.Session.Backend {
	case "", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("sqlite session backend needs a database")
		}
		return NewSQLiteStore(db), nil
	case "file":
		dir := cfg.Session.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.App.DataDir, dir)
		}
		return NewFileStore(dir), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Session.RedisAddr, err)
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
