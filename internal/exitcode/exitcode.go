// Package exitcode defines exit codes for the server process.
package exitcode

const (
	// Success indicates the input stream ended or the process was interrupted.
	Success = 0

	// UsageError indicates bad command-line flags.
	UsageError = 1

	// ConfigError indicates missing or invalid configuration.
	ConfigError = 2

	// ServeError indicates the stdio loop failed to read or write.
	ServeError = 3
)
