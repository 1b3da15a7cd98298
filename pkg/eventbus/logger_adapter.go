package eventbus

import (
	"notefiber-editor-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
)

// watermillLogger routes watermill's internal logging into ILogger.
type watermillLogger struct {
	logger logger.ILogger
	fields watermill.LogFields
}

func newWatermillLogger(log logger.ILogger) watermill.LoggerAdapter {
	return &watermillLogger{logger: log}
}

func (l *watermillLogger) details(fields watermill.LogFields) map[string]interface{} {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	d := l.details(fields)
	if err != nil {
		d["error"] = err.Error()
	}
	l.logger.Error("Watermill", msg, d)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Debug("Watermill", msg, l.details(fields))
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug("Watermill", msg, l.details(fields))
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{logger: l.logger, fields: l.details(fields)}
}
