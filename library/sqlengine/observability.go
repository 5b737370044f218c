package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	metricOperationDuration   = "librarystore_operation_duration_seconds"
	metricOperationCalls      = "librarystore_operation_calls_total"
	metricDatabaseErrors      = "librarystore_database_errors_total"
	metricConcurrencyConflict = "librarystore_concurrency_conflicts_total"
	spanNamePrefix            = "librarystore."
	spanAttrOperation         = "operation"
	spanAttrTable             = "table"
	spanAttrErrorType         = "error_type"
	spanAttrDurationMS        = "duration_ms"
	statusSuccess             = "success"
	statusError               = "error"
	statusConflict            = "conflict"
	errorTypeNotFound         = "not_found"
	errorTypeAlreadyExists    = "already_exists"
	errorTypeForeignKey       = "foreign_key_violation"
	errorTypeValidation       = "validation"
	errorTypeNoCopy           = "no_eligible_copy"
	errorTypeConflict         = "concurrency_conflict"
	errorTypeCanceled         = "context_canceled"
	errorTypeTimeout          = "context_deadline_exceeded"
	errorTypeDatabase         = "database"
)

// operationObserver bundles timing, tracing and metrics of one store operation.
type operationObserver struct {
	store     *Store
	operation string
	table     string
	span      library.SpanContext
	start     time.Time
}

// startOperation opens a span (if tracing is configured) and starts the operation clock.
func (s *Store) startOperation(ctx context.Context, operation string, table string) (context.Context, *operationObserver) {
	observer := &operationObserver{
		store:     s,
		operation: operation,
		table:     table,
		start:     time.Now(),
	}

	if s.tracingCollector != nil {
		attrs := map[string]string{spanAttrOperation: operation}
		if table != "" {
			attrs[spanAttrTable] = table
		}

		ctx, observer.span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	return ctx, observer
}

// finish records the outcome of the operation. Expected business outcomes
// (not found, no eligible copy, validation) are not counted as database errors.
func (o *operationObserver) finish(ctx context.Context, err error) {
	duration := time.Since(o.start)
	status := statusSuccess
	errorType := ""

	if err != nil {
		errorType = errorTypeOf(err)
		status = statusError

		if errorType == errorTypeConflict {
			status = statusConflict
		}
	}

	labels := map[string]string{
		spanAttrOperation: o.operation,
		"status":          status,
	}
	if o.table != "" {
		labels[spanAttrTable] = o.table
	}

	o.store.recordDuration(ctx, metricOperationDuration, duration, labels)
	o.store.incrementCounter(ctx, metricOperationCalls, labels)

	switch errorType {
	case "":
		o.store.logInfo(ctx, logMsgOperation+o.operation,
			logAttrTable, o.table, logAttrDurationMS, toMilliseconds(duration))
	case errorTypeConflict:
		o.store.incrementCounter(ctx, metricConcurrencyConflict, labels)
		o.store.logInfo(ctx, logMsgConcurrencyConflict,
			logAttrOperation, o.operation, logAttrTable, o.table, logAttrDurationMS, toMilliseconds(duration))
	case errorTypeDatabase, errorTypeCanceled, errorTypeTimeout:
		errLabels := map[string]string{spanAttrOperation: o.operation, "status": statusError, spanAttrErrorType: errorType}
		o.store.incrementCounter(ctx, metricDatabaseErrors, errLabels)
		o.store.logError(ctx, logMsgOperationFailed, err, logAttrOperation, o.operation, logAttrTable, o.table)
	}

	if o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration))}
	if errorType != "" {
		attrs[spanAttrErrorType] = errorType
	}

	o.store.tracingCollector.FinishSpan(o.span, status, attrs)
}

// errorTypeOf maps an error onto a low-cardinality label value.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, library.ErrConcurrencyConflict):
		return errorTypeConflict
	case errors.Is(err, library.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, library.ErrAlreadyExists):
		return errorTypeAlreadyExists
	case errors.Is(err, library.ErrForeignKeyViolation):
		return errorTypeForeignKey
	case errors.Is(err, library.ErrValidation):
		return errorTypeValidation
	case errors.Is(err, library.ErrNoAvailableCopy), errors.Is(err, library.ErrNoLoanedCopy):
		return errorTypeNoCopy
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	default:
		return errorTypeDatabase
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (s *Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// logError logs error information at the error level.
func (s *Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}
}

func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(library.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(library.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
	} else {
		s.metricsCollector.IncrementCounter(metric, labels)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
