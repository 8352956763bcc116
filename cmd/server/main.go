package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"alcyxob/fit-coach/internal/api"
	"alcyxob/fit-coach/internal/config"
	"alcyxob/fit-coach/internal/logger"
	"alcyxob/fit-coach/internal/repository"
	"alcyxob/fit-coach/internal/repository/mongo"
	"alcyxob/fit-coach/internal/repository/postgres"
	"alcyxob/fit-coach/internal/service"
	"alcyxob/fit-coach/internal/storage"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// connectTimeout bounds store connection and schema setup at startup.
const connectTimeout = 30 * time.Second

func main() {
	fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newStore,
			newFileStorage,
			newServices,
			newRouter,
			newHTTPServer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}

func newLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))
	return log, nil
}

// newStore connects the configured backend and closes it when the app stops.
func newStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*repository.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var store *repository.Store
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.Mongo, cfg.Database.Pool)
		if err != nil {
			return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Database.Mongo.Name)
		if cfg.Database.Migrate {
			if err := mongo.EnsureIndexes(ctx, db, log); err != nil {
				_ = mongo.DisconnectDB(ctx, client)
				return nil, fmt.Errorf("could not ensure indexes: %w", err)
			}
		}
		store = mongo.NewStore(db)
	default:
		db, err := postgres.Connect(ctx, cfg.Database.Postgres, cfg.Database.Pool)
		if err != nil {
			return nil, fmt.Errorf("could not connect to PostgreSQL: %w", err)
		}
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("could not migrate schema: %w", err)
			}
		}
		store = postgres.NewStore(db)
	}
	log.Info("database connection established",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("max_conns", cfg.Database.Pool.MaxConns),
		zap.Bool("migrate", cfg.Database.Migrate))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database connection")
			return store.Close(ctx)
		},
	})
	return store, nil
}

// newFileStorage returns nil when no bucket is configured, which disables
// completion media.
func newFileStorage(cfg config.Config, log *zap.Logger) (storage.FileStorage, error) {
	if !cfg.S3.Enabled() {
		log.Warn("s3.bucket_name is empty, completion media is disabled")
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	files, err := storage.NewS3Storage(ctx, cfg.S3, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	return files, nil
}

func newServices(cfg config.Config, log *zap.Logger, store *repository.Store, files storage.FileStorage) api.Services {
	return api.Services{
		Auth:        service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Users:       service.NewUserService(store.Users),
		Exercises:   service.NewExerciseService(store.Exercises),
		Plans:       service.NewPlanService(store.Users, store.Exercises, store.Plans, store.Completions, files, log),
		Completions: service.NewCompletionService(store.Users, store.Plans, store.Completions, files, log),
	}
}

func newRouter(cfg config.Config, log *zap.Logger, svc api.Services) http.Handler {
	return api.NewRouter(cfg, log, svc)
}

func newHTTPServer(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
