package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/oteladapters"
)

func newTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("library-test")), exporter
}

func attributeValue(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracingCollector()

	// act
	_, span := collector.StartSpan(context.Background(), "librarystore.get", map[string]string{"operation": "get", "table": "loans"})
	span.AddAttribute("loan_id", "3")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.25"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "librarystore.get", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, expected := range map[string]string{"operation": "get", "table": "loans", "loan_id": "3", "duration_ms": "1.25", "status": "success"} {
		value, ok := attributeValue(spans[0], key)
		assert.True(t, ok, "attribute %s missing", key)
		assert.Equal(t, expected, value)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "idempotent", expectedCode: codes.Ok},
		{status: "rejected", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "canceled", expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "conflict", expectedCode: codes.Error},
		{status: "concurrency_conflict", expectedCode: codes.Error},
		{status: "something_else", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracingCollector()
			_, span := collector.StartSpan(context.Background(), "circulation.handle", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_NestsSpans(t *testing.T) {
	// arrange
	collector, exporter := newTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "circulation.handle", nil)
	_, child := collector.StartSpan(ctx, "librarystore.transaction", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpans(t *testing.T) {
	collector, exporter := newTracingCollector()

	var span library.SpanContext = foreignSpan{}

	assert.NotPanics(t, func() { collector.FinishSpan(span, "success", nil) })
	assert.Empty(t, exporter.GetSpans())
}
