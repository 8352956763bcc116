package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fit-coach/internal/config"
	"alcyxob/fit-coach/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB with the shared pool limits.
// AcquireTimeout becomes the client-wide operation timeout: it bounds each
// whole operation, connection checkout included, and each transaction's
// commit loop. Expiry surfaces as repository.ErrUnavailable.
func ConnectDB(ctx context.Context, cfg config.MongoConfig, pool config.PoolConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(uint64(pool.MaxConns)).
		SetMaxConnIdleTime(pool.IdleTimeout).
		SetTimeout(pool.AcquireTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every collection relies on, including the
// unique keys that back duplicate detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	for name, indexes := range map[string][]mongo.IndexModel{
		userCollectionName:         userIndexes(),
		planCollectionName:         planIndexes(),
		planExerciseCollectionName: planExerciseIndexes(),
		completionCollectionName:   completionIndexes(),
	} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
		log.Debug("ensured indexes", zap.String("collection", name), zap.Int("count", len(indexes)))
	}
	return nil
}

// NewStore wires every repository to db. Closing the store disconnects the client.
func NewStore(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:       NewMongoUserRepository(db),
		Exercises:   NewMongoExerciseRepository(db),
		Plans:       NewMongoWorkoutPlanRepository(db),
		Completions: NewMongoCompletionRepository(db),
		Close: func(ctx context.Context) error {
			return DisconnectDB(ctx, db.Client())
		},
	}
}

// mapErr converts driver errors into repository sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	case mongo.IsTimeout(err):
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}
