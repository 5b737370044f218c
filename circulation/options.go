package circulation

import (
	"errors"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
	"github.com/DevinCastillo5/Library-App/shell/observable"
)

var (
	// ErrNilClock is returned when WithClock is given a nil function.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrNilTxRunner is returned when a manager is built without a transactional store.
	ErrNilTxRunner = errors.New("transactional store must not be nil")

	// ErrNilEntityStore is returned when a manager is built without its entity table.
	ErrNilEntityStore = errors.New("entity store must not be nil")
)

// Option configures a LoanManager or a ReservationManager.
type Option func(*settings) error

type settings struct {
	retryOptions     []shell.RetryOption
	returnPolicy     library.ReturnPolicy
	logger           library.Logger
	contextualLogger library.ContextualLogger
	metricsCollector library.MetricsCollector
	tracingCollector library.TracingCollector
	clock            func() time.Time
}

func buildSettings(options []Option) (settings, error) {
	s := settings{
		returnPolicy: library.RejectReReturn,
		clock:        time.Now,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// retryOptionsFor appends the retry metrics of commandType when a metrics collector is set.
func (s settings) retryOptionsFor(commandType string) []shell.RetryOption {
	options := append([]shell.RetryOption(nil), s.retryOptions...)
	if s.metricsCollector != nil {
		options = append(options, shell.WithRetryMetrics(s.metricsCollector, commandType))
	}

	return options
}

func (s settings) now() time.Time {
	return s.clock().UTC()
}

// WithRetryOptions overrides the conflict retry behavior, e.g. shell.WithMaxAttempts(3).
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(s *settings) error {
		s.retryOptions = append(s.retryOptions, options...)
		return nil
	}
}

// WithReturnPolicy sets what returning an already returned loan does.
func WithReturnPolicy(policy library.ReturnPolicy) Option {
	return func(s *settings) error {
		s.returnPolicy = policy
		return nil
	}
}

// WithLogger sets a logger for command handling.
func WithLogger(logger library.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger; it takes precedence over WithLogger.
func WithContextualLogger(logger library.ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for command and retry metrics.
func WithMetrics(collector library.MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector library.TracingCollector) Option {
	return func(s *settings) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithClock replaces time.Now for defaulted loan, return and reserve dates.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

func wrap[C shell.Command, R any](s settings, handler shell.CommandHandler[C, R], outcome string) (shell.CommandHandler[C, R], error) {
	wrapper, err := observable.NewCommandWrapper(handler,
		observable.WithCommandMetrics[C, R](s.metricsCollector),
		observable.WithCommandTracing[C, R](s.tracingCollector),
		observable.WithCommandLogging[C, R](s.logger),
		observable.WithCommandContextualLogging[C, R](s.contextualLogger),
		observable.WithBusinessOutcome[C, R](outcome),
	)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
