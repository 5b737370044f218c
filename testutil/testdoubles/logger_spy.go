package testdoubles

import (
	"context"
	"log/slog"
	"sync"
)

// SpyLogRecord is one captured log line.
type SpyLogRecord struct {
	Level   slog.Level
	Message string
	Args    []any
	Ctx     context.Context
}

// LoggerSpy captures log lines. It implements both library.Logger and library.ContextualLogger.
type LoggerSpy struct {
	mu      sync.Mutex
	records []SpyLogRecord
}

// NewLoggerSpy creates an empty LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) record(ctx context.Context, level slog.Level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: append([]any(nil), args...), Ctx: ctx})
}

// Debug records a debug line.
func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(context.Background(), slog.LevelDebug, msg, args) }

// Info records an info line.
func (s *LoggerSpy) Info(msg string, args ...any) { s.record(context.Background(), slog.LevelInfo, msg, args) }

// Warn records a warning line.
func (s *LoggerSpy) Warn(msg string, args ...any) { s.record(context.Background(), slog.LevelWarn, msg, args) }

// Error records an error line.
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(context.Background(), slog.LevelError, msg, args) }

// DebugContext records a debug line with its context.
func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, slog.LevelDebug, msg, args)
}

// InfoContext records an info line with its context.
func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, slog.LevelInfo, msg, args)
}

// WarnContext records a warning line with its context.
func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, slog.LevelWarn, msg, args)
}

// ErrorContext records an error line with its context.
func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, slog.LevelError, msg, args)
}

// Records returns a copy of all captured lines.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

// HasLog reports whether a line with the level and message was captured.
func (s *LoggerSpy) HasLog(level slog.Level, msg string) bool {
	for _, record := range s.Records() {
		if record.Level == level && record.Message == msg {
			return true
		}
	}

	return false
}

// HasLogWithAttr reports whether a line with the message carried the attribute key.
func (s *LoggerSpy) HasLogWithAttr(msg string, key string) bool {
	for _, record := range s.Records() {
		if record.Message != msg {
			continue
		}

		for i := 0; i+1 < len(record.Args); i += 2 {
			if record.Args[i] == key {
				return true
			}
		}
	}

	return false
}

// CountLevel counts the lines captured at the level.
func (s *LoggerSpy) CountLevel(level slog.Level) int {
	count := 0
	for _, record := range s.Records() {
		if record.Level == level {
			count++
		}
	}

	return count
}
