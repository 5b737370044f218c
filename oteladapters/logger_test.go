package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/DevinCastillo5/Library-App/oteladapters"
)

func Test_SlogBridgeLogger_WithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler("library-test", handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message", "table", "loans")
	logger.InfoContext(ctx, "info message", "rows_affected", 1)
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"msg":"debug message"`)
	assert.Contains(t, output, `"table":"loans"`)
	assert.Contains(t, output, `"rows_affected":1`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"error":"boom"`)
}

func Test_SlogBridgeLogger_WithHandler_RespectsHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler("library-test",
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("info message")
	logger.Slog().With("request_id", "abc").Warn("warn message")

	assert.NotContains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func Test_SlogBridgeLogger_GlobalProvider_DoesNotPanic(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("library-test")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "command handler completed", "command_type", "LendBookCopy")
		logger.Debug("executed sql")
	})
}

func Test_OTelLogger_ArgumentHandling(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("library-test"))
	ctx := context.Background()

	testCases := []struct {
		description string
		args        []any
	}{
		{description: "typed values", args: []any{"s", "text", "i", 1, "i64", int64(2), "f", 0.5, "b", true}},
		{description: "error value", args: []any{"error", errors.New("boom")}},
		{description: "odd number of args", args: []any{"key1", "value1", "key2"}},
		{description: "non-string key", args: []any{42, "value"}},
		{description: "no args"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.NotPanics(t, func() {
				logger.DebugContext(ctx, "debug", tc.args...)
				logger.InfoContext(ctx, "info", tc.args...)
				logger.WarnContext(ctx, "warn", tc.args...)
				logger.ErrorContext(ctx, "error", tc.args...)
			})
		})
	}
}
