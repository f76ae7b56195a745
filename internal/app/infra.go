package app

import (
	"context"
	"database/sql"
	"fmt"

	"link-service/internal/account"
	"link-service/internal/config"
	"link-service/internal/db"
	"link-service/internal/logger"
	"link-service/internal/redis"

	_ "github.com/lib/pq"
)

type Infra struct {
	Accounts account.Store
	cleanup  []func() error
}

func (i *Infra) Close() error {
	var firstErr error
	for _, fn := range i.cleanup {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	switch cfg.AccountStore {
	case config.StorePostgres:
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		if err := db.RunMigration(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		logger.Info("database ready", nil)

		return &Infra{
			Accounts: account.NewPostgresStore(&db.DB{DB: sqlDB}),
			cleanup:  []func() error{sqlDB.Close},
		}, nil

	case config.StoreRedis:
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}

		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
		})

		return &Infra{
			Accounts: account.NewRedisStore(redisClient.Client),
			cleanup:  []func() error{redisClient.Close},
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory account store; data is lost on restart", nil)
		return &Infra{Accounts: account.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unknown account store %q", cfg.AccountStore)
	}
}
