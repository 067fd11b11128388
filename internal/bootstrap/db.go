package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pmdesk/pm-backend/config"
	"github.com/pmdesk/pm-backend/internal/storage/postgres"
)

// OpenDB connects to Postgres and applies the embedded schema.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}

	return db, nil
}

// OpenRedis builds the client and pings it. A failed ping still returns the
// client so health checks report redis as down and the cache recovers once
// the server is reachable.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		return client, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
