// Package testdoubles provides spies for the observability interfaces of package library.
//
// The spies record every call so tests can assert which metrics, spans and log lines
// an operation produced. All spies are safe for concurrent use.
package testdoubles
