// @title           Todo API
// @version         1.0
// @description     Multi-tenant todo list service with JWT authentication.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/tasknest/todo-api/docs"
	"github.com/tasknest/todo-api/internal/api"
	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/core/service"
	redisdb "github.com/tasknest/todo-api/internal/infrastructure/db/redis"
	"github.com/tasknest/todo-api/internal/infrastructure/http/handlers"
	"github.com/tasknest/todo-api/internal/infrastructure/token"
	"github.com/tasknest/todo-api/internal/pkg/config"
	"github.com/tasknest/todo-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "todo-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	checks := store.checks
	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		idem = redisdb.NewIdempotencyStore(rdb, redisdb.IdempotencyTTL)
		checks["redis"] = handlers.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	codec, err := token.NewJWTCodec(cfg.JWTSecret)
	if err != nil {
		return err
	}
	tokens := service.NewTokenService(codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log)

	e := api.NewRouter(api.Dependencies{
		Logger:     log,
		Auth:       service.NewAuthService(store.users, tokens, log),
		Tokens:     tokens,
		Tasks:      service.NewTaskService(store.tasks, service.NewOwnershipGuard(), idem, log),
		AccessTTL:  tokens.AccessTTL(),
		Checks:     checks,
		Registerer: prometheus.DefaultRegisterer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageDriver).Msg("starting todo-api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("stopped")
	return nil
}
