package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/infrastructure/db/memory"
	mongodb "github.com/tasknest/todo-api/internal/infrastructure/db/mongo"
	"github.com/tasknest/todo-api/internal/infrastructure/db/postgres"
	"github.com/tasknest/todo-api/internal/infrastructure/http/handlers"
	"github.com/tasknest/todo-api/internal/pkg/config"
)

type storage struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	checks map[string]handlers.Check
	close  func()
}

// openStorage connects the repositories selected by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		store, err := mongodb.Open(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
		return &storage{
			tasks:  store.Tasks,
			users:  store.Users,
			checks: map[string]handlers.Check{"mongodb": handlers.MongoCheck(store.DB)},
			close:  func() { _ = store.Close(context.Background()) },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected")
		return &storage{
			tasks:  postgres.NewTaskRepository(db),
			users:  postgres.NewUserRepository(db),
			checks: map[string]handlers.Check{"postgres": handlers.SQLCheck(db)},
			close:  func() { _ = db.Close() },
		}, nil

	default:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			tasks:  memory.NewTaskRepository(),
			users:  memory.NewUserRepository(),
			checks: map[string]handlers.Check{},
			close:  func() {},
		}, nil
	}
}
