package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/platform/db"
)

// OpenStore connects the document store selected by cfg.StoreDriver. For
// Postgres the schema is migrated first and change events travel over
// Redis. The returned func releases the connection.
func OpenStore(ctx context.Context, cfg *Config, redisClient *redis.Client, logger *slog.Logger) (docstore.Store, func(), error) {
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if err := docstore.Migrate(cfg.PGDSN, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, nil, err
		}
		var notifier docstore.Notifier
		if redisClient != nil {
			notifier = docstore.NewRedisNotifier(redisClient)
		}
		return docstore.NewPostgresStore(pool, notifier, logger), pool.Close, nil
	case StoreDriverMongo:
		client, db, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", slog.Any("error", err))
			}
		}
		return docstore.NewMongoStore(db, logger), closeFn, nil
	case StoreDriverMemory:
		logger.Warn("using in-memory document store; data is lost on exit")
		return docstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
