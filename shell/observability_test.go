package shell_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
	"github.com/DevinCastillo5/Library-App/testutil/testdoubles"
)

func Test_StatusOf(t *testing.T) {
	testCases := []struct {
		name     string
		result   shell.HandlerResult
		err      error
		expected string
	}{
		{name: "success", expected: shell.StatusSuccess},
		{name: "idempotent", result: shell.HandlerResult{Idempotent: true}, expected: shell.StatusIdempotent},
		{name: "no copy", err: fmt.Errorf("%w: isbn 9780000000001", library.ErrNoAvailableCopy), expected: shell.StatusRejected},
		{name: "already returned", err: library.ErrLoanAlreadyReturned, expected: shell.StatusRejected},
		{name: "conflict", err: errors.Join(library.ErrConcurrencyConflict, errors.New("40001")), expected: shell.StatusConcurrencyConflict},
		{name: "canceled", err: context.Canceled, expected: shell.StatusCanceled},
		{name: "deadline", err: context.DeadlineExceeded, expected: shell.StatusTimeout},
		{name: "technical", err: errors.New("connection reset"), expected: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shell.StatusOf(tc.result, tc.err))
		})
	}
}

func Test_RecordCommandMetrics_CountsStatusSpecificMetric(t *testing.T) {
	// arrange
	collector := testdoubles.NewMetricsCollectorSpy()

	// act
	shell.RecordCommandMetrics(context.Background(), collector, "ReturnBookCopy", shell.StatusIdempotent, time.Millisecond)

	// assert
	labels := map[string]string{shell.LogAttrCommandType: "ReturnBookCopy", shell.LogAttrStatus: shell.StatusIdempotent}
	assert.True(t, collector.HasDuration(shell.CommandDurationMetric, labels))
	assert.True(t, collector.HasCounter(shell.CommandCallsMetric, labels))
	assert.True(t, collector.HasCounter(shell.CommandIdempotentMetric, labels))
	assert.False(t, collector.HasCounter(shell.CommandRejectedMetric, nil))
}

func Test_RecordCommandMetrics_NilCollectorIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		shell.RecordCommandMetrics(context.Background(), nil, "ReturnBookCopy", shell.StatusSuccess, time.Millisecond)
	})
}

func Test_LogCommandError_RejectionsAreLoggedAtInfo(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()

	// act
	shell.LogCommandError(context.Background(), nil, logger, "LendBookCopy", shell.StatusRejected, library.ErrNoAvailableCopy)
	shell.LogCommandError(context.Background(), nil, logger, "LendBookCopy", shell.StatusError, errors.New("boom"))

	// assert
	assert.True(t, logger.HasLog(slog.LevelInfo, shell.LogMsgCommandRejected))
	assert.True(t, logger.HasLog(slog.LevelError, shell.LogMsgCommandFailed))
}

func Test_StartCommandSpan_WithoutCollector_ReturnsNilSpan(t *testing.T) {
	// act
	ctx, span := shell.StartCommandSpan(context.Background(), nil, "LendBookCopy")

	// assert
	assert.NotNil(t, ctx)
	assert.Nil(t, span)
}
