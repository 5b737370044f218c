// Package shell holds the imperative plumbing shared by the circulation managers:
// retrying on concurrency conflicts, operation results, and the logging, metrics and
// tracing helpers every manager operation goes through.
package shell
