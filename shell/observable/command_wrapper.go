package observable

import (
	"context"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

// CommandWrapper instruments any command handler. Each Handle call gets one span,
// a start and an outcome log line, and duration and call metrics labelled with the command type.
type CommandWrapper[C shell.Command, R any] struct {
	coreHandler      shell.CommandHandler[C, R]
	commandType      string
	businessOutcome  string
	metricsCollector library.MetricsCollector
	tracingCollector library.TracingCollector
	contextualLogger library.ContextualLogger
	logger           library.Logger
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command, R any] func(*CommandWrapper[C, R]) error

// NewCommandWrapper wraps coreHandler. The command type is taken from the zero value of C.
func NewCommandWrapper[C shell.Command, R any](
	coreHandler shell.CommandHandler[C, R],
	opts ...CommandOption[C, R],
) (*CommandWrapper[C, R], error) {
	var zeroCommand C

	wrapper := &CommandWrapper[C, R]{
		coreHandler:     coreHandler,
		commandType:     zeroCommand.CommandType(),
		businessOutcome: shell.StatusSuccess,
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and records the outcome.
func (w *CommandWrapper[C, R]) Handle(ctx context.Context, command C) (R, shell.HandlerResult, error) {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType)

	value, result, err := w.coreHandler.Handle(ctx, command)

	duration := time.Since(start)
	status := shell.StatusOf(result, err)

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishCommandSpan(w.tracingCollector, span, status, duration, err)

	if err != nil {
		shell.LogCommandError(ctx, w.logger, w.contextualLogger, w.commandType, status, err)
		return value, result, err
	}

	outcome := w.businessOutcome
	if result.Idempotent {
		outcome = shell.StatusIdempotent
	}

	shell.LogCommandSuccess(ctx, w.logger, w.contextualLogger, w.commandType, outcome, result, duration)

	return value, result, nil
}

// WithCommandMetrics sets the metrics collector.
func WithCommandMetrics[C shell.Command, R any](collector library.MetricsCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector.
func WithCommandTracing[C shell.Command, R any](collector library.TracingCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithCommandContextualLogging sets the context-aware logger; it takes precedence over WithCommandLogging.
func WithCommandContextualLogging[C shell.Command, R any](logger library.ContextualLogger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the basic logger.
func WithCommandLogging[C shell.Command, R any](logger library.Logger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.logger = logger
		return nil
	}
}

// WithBusinessOutcome names the outcome logged when the command changes state, e.g. "loan_created".
func WithBusinessOutcome[C shell.Command, R any](outcome string) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.businessOutcome = outcome
		return nil
	}
}
