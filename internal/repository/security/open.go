package security

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
)

// gormSlowThreshold is the query duration reported as slow.
const gormSlowThreshold = 200 * time.Millisecond

// Open creates the repository selected by the storage settings.
// The returned close function releases connections and is never nil.
func Open(ctx context.Context, settings config.Storage) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch settings.Driver {
	case config.DriverMemory:
		return NewMemoryRepository(), noop, nil
	case config.DriverFile:
		repo, err := NewFileRepository(settings.Path)
		if err != nil {
			return nil, noop, err
		}

		return repo, noop, nil
	case config.DriverSQLite, config.DriverPostgres:
		return openGorm(ctx, settings)
	case config.DriverRedis:
		client, err := NewRedisClient(settings.RedisURL)
		if err != nil {
			return nil, noop, err
		}

		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}

		repo := NewRedisRepository(client, settings.RedisPrefix)

		return repo, repo.Close, nil
	default:
		return nil, noop, fmt.Errorf("open storage %q: unsupported driver", settings.Driver)
	}
}

// openGorm connects to SQLite or PostgreSQL and migrates the schema.
func openGorm(ctx context.Context, settings config.Storage) (Repository, func() error, error) {
	noop := func() error { return nil }

	var dialector gorm.Dialector
	if settings.Driver == config.DriverPostgres {
		dialector = postgres.Open(settings.DSN)
	} else {
		dialector = sqlite.Open(settings.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(ctx),
	})
	if err != nil {
		return nil, noop, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, noop, fmt.Errorf("get sql.DB: %w", err)
	}

	repo, err := NewGormRepository(ctx, db)
	if err != nil {
		_ = sqlDB.Close()

		return nil, noop, err
	}

	return repo, sqlDB.Close, nil
}

// newGormLogger routes GORM warnings, errors and slow queries to the context logger.
func newGormLogger(ctx context.Context) gormlogger.Interface { //nolint:ireturn // GORM consumes its logger interface.
	return gormlogger.New(
		logger.NewPrintf(logger.WithName(ctx, "gorm"), zapcore.WarnLevel),
		gormlogger.Config{
			SlowThreshold:             gormSlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
