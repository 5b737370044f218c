// Package observable decorates command handlers with logging, metrics and tracing,
// keeping the handlers themselves free of observability code.
package observable
