// Package oteladapters implements the library observability interfaces on top of OpenTelemetry:
// metrics through otel/metric instruments, spans through otel/trace, and logs through the
// otelslog bridge or the otel/log API.
package oteladapters
