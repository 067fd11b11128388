package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pmdesk/pm-backend/config"
	_ "github.com/lib/pq"
)

func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := DSN(cfg)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Fail fast
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
