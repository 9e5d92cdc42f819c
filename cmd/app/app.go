package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	handlers "devconnector/internal/handler"
	"devconnector/internal/repository"
	"devconnector/internal/router"
	"devconnector/internal/service"
	"devconnector/internal/storage"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 10 * time.Second

// App holds the assembled HTTP handler and the connections it owns.
type App struct {
	Handler http.Handler
	closers []func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	repo, health, err := a.connectStore(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	postCache, err := a.connectCache(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	// MinIO is optional: without it avatar uploads fail but posts keep working
	var avatarStorage storage.Storage
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(cfg)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		if err := minioClient.EnsureBucket(ctx, cfg.MinIO.Region); err != nil {
			log.Printf("Warning: avatar bucket is not ready: %v", err)
		}
		avatarStorage = minioClient
	}

	services := service.NewService(repo, cfg, avatarStorage, postCache)
	h := handlers.NewHandlers(services, cfg)
	a.Handler = router.NewRouter(h, services.Auth, cfg, health)

	return a, nil
}

func (a *App) connectStore(ctx context.Context, cfg *config.Config) (*repository.Repository, database.HealthChecker, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return db.CloseDB() })
		return repository.NewRepository(db.DB), db, nil

	case config.StorageDriverMongo:
		mdb, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.closers = append(a.closers, mdb.Close)
		return repository.NewMongoRepository(mdb.Database), mdb, nil

	case config.StorageDriverMemory:
		log.Println("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryRepository(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) connectCache(ctx context.Context, cfg *config.Config) (cache.PostCache, error) {
	if !cfg.Redis.Enabled {
		return cache.NoopPostCache{}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	return cache.NewRedisPostCache(client, cfg.Redis.PostsTTL), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Printf("Error closing connection: %v", err)
		}
	}
	a.closers = nil
}
