// Package fixtures sets up stores and rows for tests.
package fixtures
