package di

import (
	"context"
	"database/sql"
	"fmt"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/resources"
	"github.com/goliatone/go-publish/internal/runtimeconfig"
)

func (c *Container) configureStorage() error {
	if c.repo != nil {
		return nil
	}
	if c.Config.StorageDriver() != runtimeconfig.StorageBun && c.bunDB == nil {
		c.repo = resources.NewMemoryRepository()
		return nil
	}

	if c.bunDB == nil {
		db, err := openBunDB(c.Config.StorageDialect(), c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if err := resources.CreateTables(context.Background(), c.bunDB); err != nil {
		return fmt.Errorf("publish storage: create tables: %w", err)
	}

	c.configureCacheDefaults()
	logger := resources.WithBunLogger(logging.ResourcesLogger(c.loggerProvider))
	if c.cacheService != nil {
		c.repo = resources.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer, logger)
	} else {
		c.repo = resources.NewBunRepository(c.bunDB, logger)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("publish.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func openBunDB(dialect, dsn string) (*bun.DB, error) {
	switch dialect {
	case runtimeconfig.DialectPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("publish storage: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("publish storage: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}
