package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/DevinCastillo5/Library-App/library"
)

// MetricsCollector maps the library metrics onto OpenTelemetry instruments, created on first use:
// durations become histograms in seconds, counters become Int64Counters, values become gauges.
// It is safe for concurrent use.
type MetricsCollector struct {
	meter metric.Meter

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

var (
	_ library.MetricsCollector           = (*MetricsCollector)(nil)
	_ library.ContextualMetricsCollector = (*MetricsCollector)(nil)
)

// NewMetricsCollector creates a collector on a meter from the process MeterProvider.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func (m *MetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), name, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(ctx context.Context, name string, duration time.Duration, labels map[string]string) {
	if histogram := m.histogram(name); histogram != nil {
		histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
	}
}

func (m *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), name, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, name string, labels map[string]string) {
	if counter := m.counter(name); counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
	}
}

func (m *MetricsCollector) RecordValue(name string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), name, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, name string, value float64, labels map[string]string) {
	if gauge := m.gauge(name); gauge != nil {
		gauge.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
	}
}

// Instrument creation errors only occur for invalid names; such metrics are dropped.

func (m *MetricsCollector) histogram(name string) metric.Float64Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, ok := m.histograms[name]; ok {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription("Library operation duration"))
	if err != nil {
		return nil
	}

	m.histograms[name] = histogram

	return histogram
}

func (m *MetricsCollector) counter(name string) metric.Int64Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, ok := m.counters[name]; ok {
		return counter
	}

	counter, err := m.meter.Int64Counter(name, metric.WithDescription("Library operation counter"))
	if err != nil {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) gauge(name string) metric.Float64Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gauge, ok := m.gauges[name]; ok {
		return gauge
	}

	gauge, err := m.meter.Float64Gauge(name, metric.WithDescription("Library current value"))
	if err != nil {
		return nil
	}

	m.gauges[name] = gauge

	return gauge
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}
