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
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bazaar/marketplace-api/internal/api"
	"github.com/bazaar/marketplace-api/internal/api/metrics"
	"github.com/bazaar/marketplace-api/internal/core/service"
	mongodb "github.com/bazaar/marketplace-api/internal/infrastructure/db/mongo"
	redisstore "github.com/bazaar/marketplace-api/internal/infrastructure/db/redis"
	"github.com/bazaar/marketplace-api/internal/infrastructure/password"
	"github.com/bazaar/marketplace-api/internal/infrastructure/queue"
	"github.com/bazaar/marketplace-api/internal/infrastructure/token"
	"github.com/bazaar/marketplace-api/internal/pkg/config"
	"github.com/bazaar/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

//	@title						Marketplace Auth API
//	@version					1.0
//	@description				Registration, login and session management for the marketplace.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace-api",
	})

	// --- Storage ---
	var (
		client *mongo.Client
		db     *mongo.Database
	)
	err = withRetry(ctx, log, "mongodb", func(ctx context.Context) error {
		client, db, err = mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			Timeout:     cfg.Mongo.Timeout,
			AppName:     "marketplace-api",
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	var rdb *redis.Client
	err = withRetry(ctx, log, "redis", func(ctx context.Context) error {
		rdb, err = redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	events := mongodb.NewAuthEventRepository(db)
	if err := events.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Credentials ---
	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := token.NewService(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessExpiry,
		RefreshTTL:    cfg.JWT.RefreshExpiry,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	revoker := redisstore.NewRevocationStore(rdb)

	// --- Audit trail ---
	// Workers get their own context so Close can flush after the signal.
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, events, logger.Component(log, "audit"),
		queue.WithFailureHook(func(reason string) {
			metrics.AuditFailuresTotal.WithLabelValues(reason).Inc()
		}))
	audit.Start(context.Background())
	defer audit.Close()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:          logger.Component(log, "http"),
		ExposeErrors: cfg.ExposeErrors,
		Auth:         service.NewAuthService(users, hasher, tokens, revoker, audit, logger.Component(log, "auth")),
		Users:        service.NewUserService(users, hasher, audit, logger.Component(log, "users")),
		Guard:        service.NewGuard(tokens, users, revoker, logger.Component(log, "guard")),
		Mongo:        db,
		Redis:        rdb,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// withRetry retries fn with exponential backoff while a dependency comes up.
func withRetry(ctx context.Context, log zerolog.Logger, name string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(5, retry.WithCappedDuration(5*time.Second, retry.NewExponential(500*time.Millisecond)))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("connection attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
