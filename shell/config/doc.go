// Package config loads the process configuration from the environment and builds the
// database pools and OpenTelemetry providers the library service runs on.
package config
