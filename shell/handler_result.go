package shell

import "time"

// HandlerResult is the outcome metadata of one command execution, next to its business result.
type HandlerResult struct {
	// Idempotent is true when the command changed nothing because its effect was already in place.
	Idempotent bool

	// RetryAttempts is the total number of attempts, 1 when no retry was needed.
	RetryAttempts int

	// TotalRetryDelay is the time spent waiting in backoff, not executing.
	TotalRetryDelay time.Duration

	// LastErrorType is one of the ErrorType* constants.
	LastErrorType string

	// RetriesExhausted is true when every attempt ended in a concurrency conflict.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return fromRetryMetrics(retryMetrics, false)
}

// NewIdempotentResult creates a HandlerResult for a command that found nothing to do.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return fromRetryMetrics(retryMetrics, true)
}

// NewErrorResult creates a HandlerResult for a failed command, keeping its retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return fromRetryMetrics(retryMetrics, false)
}

func fromRetryMetrics(retryMetrics RetryMetrics, idempotent bool) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
