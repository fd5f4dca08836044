package db

import (
	"context"
	"fmt"

	"twitterapi/internal/config"
	"twitterapi/internal/repository"
)

// OpenStore connects to the backend named by cfg.DBDriver, prepares its schema
// and returns the repositories with a func that releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		database, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error { return database.Client().Disconnect(context.Background()) }
		if err := EnsureIndexes(ctx, database, cfg.ResetDB); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		return repository.NewMongoStore(database), closeFn, nil

	case config.DriverMySQL:
		gormDB, err := NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("mysql handle: %w", err)
		}
		if err := Migrate(gormDB, cfg.ResetDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repository.NewGormStore(gormDB), sqlDB.Close, nil

	case config.DriverMemory:
		return repository.NewMemoryStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
