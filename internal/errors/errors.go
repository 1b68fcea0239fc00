// Package apperrors provides domain-specific error types for logsieve.
// These error types include contextual information to aid debugging and error reporting.
package apperrors

import "fmt"

// ConfigurationError represents an invalid run parameter: a malformed filter
// criteria string, a non-positive pool size or timeout, an unknown time unit.
// These fail fast before any scanning starts.
type ConfigurationError struct {
	Flag  string // CLI flag or config key that carried the value
	Value string // Offending value as supplied
	Err   error  // Underlying error naming the expected format
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Flag != "" {
		return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Flag, e.Err)
	}
	return fmt.Sprintf("invalid value %q: %v", e.Value, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DiscoveryError represents a path specifier that could not be expanded.
// Discovery errors are recovered locally: the specifier yields zero
// descriptors and the run continues.
type DiscoveryError struct {
	Specifier string // Path specifier as supplied
	Err       error  // Underlying error
}

// Error implements the error interface for DiscoveryError.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot expand event log location %q: %v", e.Specifier, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ScanError represents a per-log header extraction failure. Scan errors are
// recovered as an absent header; the log is never resubmitted or retried.
type ScanError struct {
	Path string // Event log path being scanned
	Err  error  // Underlying error
}

// Error implements the error interface for ScanError.
func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan event log %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ScanError) Unwrap() error {
	return e.Err
}
