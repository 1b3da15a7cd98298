package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notefiber-editor-be/internal/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger routes gorm's logging into ILogger under the "Database" module.
type gormLogger struct {
	logger   logger.ILogger
	slow     time.Duration
	traceAll bool
	level    gormlogger.LogLevel
}

func newGormLogger(log logger.ILogger, slow time.Duration, traceAll bool) *gormLogger {
	return &gormLogger{logger: log, slow: slow, traceAll: traceAll, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info("Database", fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn("Database", fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error("Database", fmt.Sprintf(msg, args...), nil)
	}
}

// Trace reports failed statements and slow ones. Missing rows are normal
// for FindOne and are not errors here.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger.Error("Database", "Query failed", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(), "error": err.Error(),
		})
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn("Database", "Slow query", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(),
		})
	case l.traceAll:
		sql, rows := fc()
		l.logger.Debug("Database", "Query", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(),
		})
	}
}
