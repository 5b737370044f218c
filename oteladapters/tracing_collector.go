package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevinCastillo5/Library-App/library"
)

// TracingCollector starts and ends OpenTelemetry spans for store operations and circulation commands.
type TracingCollector struct {
	tracer trace.Tracer
}

var _ library.TracingCollector = (*TracingCollector)(nil)

// NewTracingCollector creates a collector on a tracer from the process TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a child span of whatever span ctx carries.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, library.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan adds attrs, sets the status and ends the span. Foreign SpanContext implementations are ignored.
func (t *TracingCollector) FinishSpan(spanCtx library.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	span.span.SetAttributes(toAttributes(attrs)...)
	span.SetStatus(status)
	span.span.End()
}

// SpanContext wraps an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

var _ library.SpanContext = (*SpanContext)(nil)

// SetStatus maps the status names used by the store and the circulation commands onto span status codes.
// Business rejections and idempotent commands are not errors.
func (s *SpanContext) SetStatus(status string) {
	s.span.SetAttributes(attribute.String("status", status))

	switch status {
	case "success", "idempotent", "rejected":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "operation failed")
	case "canceled":
		s.span.SetStatus(codes.Error, "operation canceled")
	case "timeout":
		s.span.SetStatus(codes.Error, "operation timed out")
	case "conflict", "concurrency_conflict":
		s.span.SetStatus(codes.Error, "concurrency conflict")
	}
}

func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}
