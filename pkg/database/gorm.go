package database

import (
	"fmt"
	"time"

	"notefiber-editor-be/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options tune the connection pool and SQL logging.
type Options struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration

	// Logger receives slow queries and errors. Nil keeps gorm silent.
	Logger logger.ILogger
	// TraceSQL logs every statement at debug level.
	TraceSQL bool
}

// DefaultOptions suit a single editor instance: few writers, short queries.
func DefaultOptions() Options {
	return Options{
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
	}
}

// Open connects to postgres through the pgx driver.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database: empty connection string")
	}

	gormLog := gormlogger.Discard
	if opts.Logger != nil {
		gormLog = newGormLogger(opts.Logger, opts.SlowThreshold, opts.TraceSQL)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return db, nil
}
