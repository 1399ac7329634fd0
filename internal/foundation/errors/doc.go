// Package errors provides foundational, type-safe error primitives used across lessbuild.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, path_escape, compile, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Severity drives control flow in the pipeline: warning-level errors (path escapes,
// unknown digest algorithms) skip the affected entry or algorithm, fatal errors
// (compilation, directory creation) abort the phase.
//
// Example usage:
//
//	err := errors.CompileError("stylesheet compilation failed").
//		WithCause(originalErr).
//		WithContext("input", inputPath).
//		Build()
package errors
