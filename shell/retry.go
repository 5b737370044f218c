package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyCommandType is returned when an empty command type is provided to WithRetryMetrics.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a unit of work.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried unit of work went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector library.MetricsCollector
	commandType      string
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// RetryWithExponentialBackoff runs fn until it succeeds, fails with an error other than
// library.ErrConcurrencyConflict, the context ends, or maxAttempts is reached.
//
// Default schedule: 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms plus up to 30% jitter.
// Timeouts and cancellations are never retried.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: ErrorTypeNone}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.backoff(attempt)
			recordDuration(ctx, config.metricsCollector, RetryDelayMetric, delay,
				map[string]string{LogAttrCommandType: config.commandType, labelAttemptNumber: strconv.Itoa(attempt)})

			select {
			case <-time.After(delay):
				metrics.TotalDelay += delay
			case <-ctx.Done():
				metrics.LastErrorType = ErrorTypeOf(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		lastErr = fn(ctx)
		metrics.LastErrorType = ErrorTypeOf(lastErr)

		if lastErr == nil || !isRetryable(lastErr) {
			return metrics, lastErr
		}

		if attempt < config.maxAttempts-1 {
			incrementCounter(ctx, config.metricsCollector, RetriesMetric,
				BuildRetryLabels(config.commandType, attempt+1, metrics.LastErrorType))
		}
	}

	metrics.RetriesExhausted = true
	incrementCounter(ctx, config.metricsCollector, MaxRetriesReachedMetric,
		map[string]string{LogAttrCommandType: config.commandType, labelFinalErrorType: metrics.LastErrorType})

	return metrics, lastErr
}

// backoff returns baseDelay * 2^(attempt-1) plus jitter.
func (c *retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec // jitter needs no crypto randomness

	return delay + time.Duration(jitter)
}

// Only concurrency conflicts are retried; everything else fails fast.
func isRetryable(err error) bool {
	return errors.Is(err, library.ErrConcurrencyConflict)
}

// WithMaxAttempts sets the maximum number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; each further retry doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics records retry attempts, delays and exhaustion labelled with the command type.
func WithRetryMetrics(collector library.MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}
