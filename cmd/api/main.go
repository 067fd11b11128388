package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pmdesk/pm-backend/config"
	"github.com/pmdesk/pm-backend/internal/bootstrap"
	"github.com/pmdesk/pm-backend/internal/logging"
	projecthttp "github.com/pmdesk/pm-backend/internal/projects/http"
	"github.com/pmdesk/pm-backend/internal/projects/repository"
	"github.com/pmdesk/pm-backend/internal/projects/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat,
		zap.String("service", cfg.App.ServiceName),
		zap.String("version", cfg.App.Version),
	)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	svcOpts := []service.Option{
		service.WithDeadlineLayout(cfg.App.DeadlineLayout),
		service.WithLogger(log.Named("service")),
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			// Cache errors fall back to Postgres per request; /health reports redis down.
			log.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		svcOpts = append(svcOpts, service.WithCache(repository.NewListingCache(rdb, cfg.Redis.CacheTTL)))
		log.Info("listing cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	svc := service.NewProjectService(repository.NewProjectRepository(db), svcOpts...)
	handler := projecthttp.New(svc,
		projecthttp.WithLogger(log.Named("project")),
		projecthttp.WithStrictActions(cfg.App.StrictActions),
	)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		DB:             db,
		Redis:          rdb,
		Logger:         log.Named("http"),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Projects:       handler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
