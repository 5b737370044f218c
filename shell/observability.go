package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	// CommandDurationMetric tracks circulation command duration.
	CommandDurationMetric = "circulation_command_duration_seconds"

	// CommandCallsMetric tracks circulation command calls by status.
	CommandCallsMetric = "circulation_command_calls_total"

	// CommandIdempotentMetric tracks commands that found their effect already in place.
	CommandIdempotentMetric = "circulation_idempotent_commands_total"

	// CommandRejectedMetric tracks commands refused for a business reason (no copy, already returned, ...).
	CommandRejectedMetric = "circulation_rejected_commands_total"

	// CommandCanceledMetric tracks canceled commands.
	CommandCanceledMetric = "circulation_canceled_commands_total"

	// CommandTimeoutMetric tracks commands that ran into their deadline.
	CommandTimeoutMetric = "circulation_timeout_commands_total"

	// CommandConcurrencyConflictMetric tracks commands that gave up on concurrency conflicts.
	CommandConcurrencyConflictMetric = "circulation_concurrency_conflicts_total"

	// RetriesMetric tracks retry attempts.
	//
	// Labels: command_type, attempt_number, error_type.
	RetriesMetric = "circulation_retries_total"

	// RetryDelayMetric tracks the backoff delay before each retry.
	//
	// Labels: command_type, attempt_number.
	RetryDelayMetric = "circulation_retry_delay_seconds"

	// MaxRetriesReachedMetric tracks commands whose attempts were all conflicts.
	//
	// Labels: command_type, final_error_type.
	MaxRetriesReachedMetric = "circulation_max_retries_reached_total"

	// StatusSuccess indicates successful command completion.
	StatusSuccess = "success"

	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"

	// StatusRejected indicates a business rule refused the command.
	StatusRejected = "rejected"

	// StatusError indicates a technical failure.
	StatusError = "error"

	// StatusCanceled indicates the context was canceled.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the context deadline passed.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates retries were exhausted on conflicts.
	StatusConcurrencyConflict = "concurrency_conflict"

	// ErrorTypeNone is the error type of a successful attempt.
	ErrorTypeNone = "none"

	// ErrorTypeConcurrencyConflict is the error type of a conflict.
	ErrorTypeConcurrencyConflict = "concurrency_conflict"

	// ErrorTypeCanceled is the error type of a canceled context.
	ErrorTypeCanceled = "context_canceled"

	// ErrorTypeTimeout is the error type of an expired context.
	ErrorTypeTimeout = "context_deadline_exceeded"

	// ErrorTypeOther covers every other error.
	ErrorTypeOther = "other"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogMsgCommandRejected is logged when a business rule refuses the command.
	LogMsgCommandRejected = "command handler rejected command"

	// LogAttrCommandType identifies the command type in logs, metrics and spans.
	LogAttrCommandType = "command_type"

	// LogAttrStatus is the command status.
	LogAttrStatus = "status"

	// LogAttrDurationMS is the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrBusinessOutcome classifies the business result.
	LogAttrBusinessOutcome = "business_outcome"

	// LogAttrRetryAttempts is the number of attempts a command took.
	LogAttrRetryAttempts = "retry_attempts"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "circulation.handle"

	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

// BuildCommandLabels creates the standard metric labels of a command.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildRetryLabels creates the standard metric labels of a retry.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ErrorTypeOf maps an error onto one of the ErrorType* constants.
func ErrorTypeOf(err error) string {
	switch {
	case err == nil:
		return ErrorTypeNone
	case errors.Is(err, library.ErrConcurrencyConflict):
		return ErrorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	default:
		return ErrorTypeOther
	}
}

// IsBusinessRejection reports whether err is an expected refusal rather than a failure.
func IsBusinessRejection(err error) bool {
	return errors.Is(err, library.ErrNoAvailableCopy) ||
		errors.Is(err, library.ErrNoLoanedCopy) ||
		errors.Is(err, library.ErrLoanAlreadyReturned) ||
		errors.Is(err, library.ErrNotFound) ||
		errors.Is(err, library.ErrForeignKeyViolation) ||
		errors.Is(err, library.ErrValidation)
}

// StatusOf maps the outcome of a command onto one of the Status* constants.
func StatusOf(result HandlerResult, err error) string {
	switch {
	case err == nil && result.Idempotent:
		return StatusIdempotent
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, library.ErrConcurrencyConflict):
		return StatusConcurrencyConflict
	case IsBusinessRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// statusMetrics lists the dedicated counters some statuses increment besides the call counter.
var statusMetrics = map[string]string{
	StatusIdempotent:          CommandIdempotentMetric,
	StatusRejected:            CommandRejectedMetric,
	StatusCanceled:            CommandCanceledMetric,
	StatusTimeout:             CommandTimeoutMetric,
	StatusConcurrencyConflict: CommandConcurrencyConflictMetric,
}

// RecordCommandMetrics records duration, call count and the status specific counter of a command.
func RecordCommandMetrics(
	ctx context.Context,
	collector library.MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandCallsMetric, labels)

	if metric, ok := statusMetrics[status]; ok {
		incrementCounter(ctx, collector, metric, labels)
	}
}

// StartCommandSpan starts a span for a command, or returns a nil span when tracing is disabled.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector library.TracingCollector,
	commandType string,
) (context.Context, library.SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

// FinishCommandSpan completes the span of a command with its outcome.
func FinishCommandSpan(
	tracingCollector library.TracingCollector,
	span library.SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger library.Logger, contextualLogger library.ContextualLogger, commandType string) {
	logAt(ctx, logger, contextualLogger, false, LogMsgCommandStarted, LogAttrCommandType, commandType)
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger library.Logger,
	contextualLogger library.ContextualLogger,
	commandType string,
	businessOutcome string,
	result HandlerResult,
	duration time.Duration,
) {
	logAt(ctx, logger, contextualLogger, false, LogMsgCommandCompleted,
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrRetryAttempts, result.RetryAttempts,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogCommandError logs a failed or rejected command. Rejections are logged at info level.
func LogCommandError(
	ctx context.Context,
	logger library.Logger,
	contextualLogger library.ContextualLogger,
	commandType string,
	status string,
	err error,
) {
	if status == StatusRejected {
		logAt(ctx, logger, contextualLogger, false, LogMsgCommandRejected,
			LogAttrCommandType, commandType, LogAttrStatus, status, LogAttrError, err.Error())

		return
	}

	logAt(ctx, logger, contextualLogger, true, LogMsgCommandFailed,
		LogAttrCommandType, commandType, LogAttrStatus, status, LogAttrError, err.Error())
}

func logAt(
	ctx context.Context,
	logger library.Logger,
	contextualLogger library.ContextualLogger,
	isError bool,
	msg string,
	args ...any,
) {
	switch {
	case contextualLogger != nil && isError:
		contextualLogger.ErrorContext(ctx, msg, args...)
	case contextualLogger != nil:
		contextualLogger.InfoContext(ctx, msg, args...)
	case logger != nil && isError:
		logger.Error(msg, args...)
	case logger != nil:
		logger.Info(msg, args...)
	}
}

func recordDuration(ctx context.Context, collector library.MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextual, ok := collector.(library.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
	} else {
		collector.RecordDuration(metric, d, labels)
	}
}

func incrementCounter(ctx context.Context, collector library.MetricsCollector, metric string, labels map[string]string) {
	if collector == nil {
		return
	}

	if contextual, ok := collector.(library.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
	} else {
		collector.IncrementCounter(metric, labels)
	}
}
