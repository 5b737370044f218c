package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/DevinCastillo5/Library-App/library"
)

// SpySpanContext is the span handed out by TracingCollectorSpy.
type SpySpanContext struct {
	mu         sync.Mutex
	name       string
	status     string
	attributes map[string]string
}

// SetStatus sets the span status.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

// AddAttribute adds an attribute to the span.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attributes[key] = value
}

// SpySpanRecord is one finished span.
type SpySpanRecord struct {
	Name           string
	Status         string
	StartAttrs     map[string]string
	EndAttrs       map[string]string
	SpanAttributes map[string]string
}

// TracingCollectorSpy captures spans. It implements library.TracingCollector.
type TracingCollectorSpy struct {
	mu      sync.Mutex
	started map[*SpySpanContext]map[string]string
	records []SpySpanRecord
}

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{started: make(map[*SpySpanContext]map[string]string)}
}

// StartSpan starts a spy span.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, library.SpanContext) {
	span := &SpySpanContext{name: name, attributes: make(map[string]string)}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.started[span] = maps.Clone(attrs)

	return ctx, span
}

// FinishSpan records the finished span. Spans not started by this spy are ignored.
func (s *TracingCollectorSpy) FinishSpan(spanCtx library.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	span.mu.Lock()
	spanAttributes := maps.Clone(span.attributes)
	span.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	startAttrs := s.started[span]
	delete(s.started, span)

	s.records = append(s.records, SpySpanRecord{
		Name:           span.name,
		Status:         status,
		StartAttrs:     startAttrs,
		EndAttrs:       maps.Clone(attrs),
		SpanAttributes: spanAttributes,
	})
}

// SpanRecords returns a copy of all finished spans.
func (s *TracingCollectorSpy) SpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.records...)
}

// HasSpan reports whether a span with the name finished with the status ("" matches any status).
func (s *TracingCollectorSpy) HasSpan(name string, status string) bool {
	for _, record := range s.SpanRecords() {
		if record.Name == name && (status == "" || record.Status == status) {
			return true
		}
	}

	return false
}

// CountSpans counts the finished spans with the name.
func (s *TracingCollectorSpy) CountSpans(name string) int {
	count := 0
	for _, record := range s.SpanRecords() {
		if record.Name == name {
			count++
		}
	}

	return count
}

// OpenSpanCount returns the number of spans started but not finished.
func (s *TracingCollectorSpy) OpenSpanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.started)
}
