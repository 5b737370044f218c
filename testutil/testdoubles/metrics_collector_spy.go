package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricsCollectorSpy captures metrics calls. It implements library.ContextualMetricsCollector.
type MetricsCollectorSpy struct {
	mu              sync.Mutex
	durationRecords []SpyDurationRecord
	counterRecords  []SpyCounterRecord
	valueRecords    []SpyValueRecord
}

// SpyDurationRecord represents a recorded duration metric call.
type SpyDurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// SpyCounterRecord represents a recorded counter increment call.
type SpyCounterRecord struct {
	Metric string
	Labels map[string]string
}

// SpyValueRecord represents a recorded value metric call.
type SpyValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

// RecordDuration records a duration metric call.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = append(s.durationRecords, SpyDurationRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

// IncrementCounter records a counter increment call.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counterRecords = append(s.counterRecords, SpyCounterRecord{Metric: metric, Labels: maps.Clone(labels)})
}

// RecordValue records a value metric call.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueRecords = append(s.valueRecords, SpyValueRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

// RecordDurationContext records a duration metric call; the context is ignored.
func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext records a counter increment call; the context is ignored.
func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

// RecordValueContext records a value metric call; the context is ignored.
func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// DurationRecords returns a copy of all captured duration records.
func (s *MetricsCollectorSpy) DurationRecords() []SpyDurationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyDurationRecord(nil), s.durationRecords...)
}

// CounterRecords returns a copy of all captured counter records.
func (s *MetricsCollectorSpy) CounterRecords() []SpyCounterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyCounterRecord(nil), s.counterRecords...)
}

// ValueRecords returns a copy of all captured value records.
func (s *MetricsCollectorSpy) ValueRecords() []SpyValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyValueRecord(nil), s.valueRecords...)
}

// Reset drops everything captured so far.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = nil
	s.counterRecords = nil
	s.valueRecords = nil
}

// HasDuration reports whether a duration of the metric was recorded with all the given labels.
func (s *MetricsCollectorSpy) HasDuration(metric string, labels map[string]string) bool {
	for _, record := range s.DurationRecords() {
		if record.Metric == metric && containsLabels(record.Labels, labels) {
			return true
		}
	}

	return false
}

// HasCounter reports whether the counter was incremented with all the given labels.
func (s *MetricsCollectorSpy) HasCounter(metric string, labels map[string]string) bool {
	return s.CountCounter(metric, labels) > 0
}

// CountCounter counts the increments of the counter that carried all the given labels.
func (s *MetricsCollectorSpy) CountCounter(metric string, labels map[string]string) int {
	count := 0
	for _, record := range s.CounterRecords() {
		if record.Metric == metric && containsLabels(record.Labels, labels) {
			count++
		}
	}

	return count
}

// HasValue reports whether a value of the metric was recorded with all the given labels.
func (s *MetricsCollectorSpy) HasValue(metric string, labels map[string]string) bool {
	for _, record := range s.ValueRecords() {
		if record.Metric == metric && containsLabels(record.Labels, labels) {
			return true
		}
	}

	return false
}

func containsLabels(actual map[string]string, expected map[string]string) bool {
	for key, value := range expected {
		if actual[key] != value {
			return false
		}
	}

	return true
}
