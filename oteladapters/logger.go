package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/DevinCastillo5/Library-App/library"
)

// SlogBridgeLogger logs through log/slog. Built with NewSlogBridgeLogger, records go to the
// global OpenTelemetry LoggerProvider and carry the trace and span id of their context.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

var (
	_ library.Logger           = (*SlogBridgeLogger)(nil)
	_ library.ContextualLogger = (*SlogBridgeLogger)(nil)
)

// NewSlogBridgeLogger creates a logger on the otelslog bridge, named after the instrumentation scope.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler fans records out to the otelslog bridge and to handler,
// e.g. a JSON handler on stdout.
func NewSlogBridgeLoggerWithHandler(name string, handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(fanout{otelslog.NewHandler(name), handler})}
}

func (l *SlogBridgeLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogBridgeLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogBridgeLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogBridgeLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// Slog exposes the underlying *slog.Logger, e.g. for HTTP middleware.
func (l *SlogBridgeLogger) Slog() *slog.Logger {
	return l.logger
}

// fanout hands every record to all handlers that are enabled for its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range f {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range f {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}

		if err := handler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}

	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(fanout, 0, len(f))
	for _, handler := range f {
		handlers = append(handlers, handler.WithAttrs(attrs))
	}

	return handlers
}

func (f fanout) WithGroup(name string) slog.Handler {
	handlers := make(fanout, 0, len(f))
	for _, handler := range f {
		handlers = append(handlers, handler.WithGroup(name))
	}

	return handlers
}

// OTelLogger emits records through the otel/log API directly, without log/slog in between.
type OTelLogger struct {
	logger log.Logger
}

var _ library.ContextualLogger = (*OTelLogger)(nil)

// NewOTelLogger wraps a logger obtained from a LoggerProvider.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args)
}

// emit turns slog style key/value args into typed log attributes. A trailing key without value is dropped.
func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	var record log.Record
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(keyValue(key, args[i+1]))
	}

	l.logger.Emit(ctx, record)
}

func keyValue(key string, value any) log.KeyValue {
	switch v := value.(type) {
	case string:
		return log.String(key, v)
	case int:
		return log.Int(key, v)
	case int64:
		return log.Int64(key, v)
	case float64:
		return log.Float64(key, v)
	case bool:
		return log.Bool(key, v)
	case error:
		return log.String(key, v.Error())
	default:
		return log.String(key, slog.AnyValue(v).String())
	}
}
