package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reazulislam1487/event-hub-server/internal/auth"
	"github.com/reazulislam1487/event-hub-server/internal/config"
	"github.com/reazulislam1487/event-hub-server/internal/store"
)

// backends are the stores shared by serve and migrate.
type backends struct {
	mongoClient *mongo.Client
	mongo       *store.MongoStore
	pgPool      *pgxpool.Pool
	postgres    *store.PostgresStore
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	logger := config.NewLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, logger, fmt.Errorf("config: %w", err)
	}
	return cfg, logger, nil
}

func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backends, error) {
	b := &backends{}

	// ── MongoDB ──────────────────────────────────────────────
	client, err := store.ConnectMongo(ctx, cfg.ConnectionURI())
	if err != nil {
		return nil, err
	}
	b.mongoClient = client
	b.mongo = store.NewMongoStore(client.Database(cfg.MongoDB), cfg.StoreTimeout)
	logger.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")

	// ── PostgreSQL (optional user store) ─────────────────────
	if cfg.UserStore == config.UserStorePostgres {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			b.close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		b.pgPool = pool
		b.postgres = store.NewPostgresStore(pool, cfg.StoreTimeout)
		logger.Info().Msg("connected to PostgreSQL")
	}

	return b, nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// ensureSchema creates the Mongo indexes and applies pending SQL migrations.
// Both steps are idempotent, so serve runs them on every start.
func ensureSchema(ctx context.Context, idx indexer, sql migrator, logger zerolog.Logger) error {
	if err := idx.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info().Msg("indexes ensured")

	if sql == nil {
		return nil
	}
	if err := sql.Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	logger.Info().Msg("postgres migrations applied")
	return nil
}

func (b *backends) schema(ctx context.Context, logger zerolog.Logger) error {
	var sql migrator
	if b.postgres != nil {
		sql = b.postgres
	}
	return ensureSchema(ctx, b.mongo, sql, logger)
}

func (b *backends) users() auth.UserStore {
	if b.postgres != nil {
		return b.postgres
	}
	return b.mongo
}

func (b *backends) close() {
	if b.pgPool != nil {
		b.pgPool.Close()
	}
	if b.mongoClient != nil {
		_ = b.mongoClient.Disconnect(context.Background())
	}
}
