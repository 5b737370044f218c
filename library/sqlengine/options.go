package sqlengine

import (
	"github.com/DevinCastillo5/Library-App/library"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger receives messages at different levels based on its configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: completed operations with durations (production-safe)
// Warn level: non-critical issues like rollback or cleanup failures
// Error level: failures that cause the operation to fail.
func WithLogger(logger library.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, call counts, database errors and concurrency conflicts.
func WithMetrics(collector library.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every store operation and every transaction gets its own span.
func WithTracing(collector library.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is preferred over the plain logger so log lines carry trace correlation.
func WithContextualLogger(logger library.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}
