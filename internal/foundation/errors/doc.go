// Package errors provides the classified error type used for fatal conversion failures.
//
// A conversion either succeeds (possibly with recoverable warnings, see package diag) or
// fails with exactly one ClassifiedError. The error carries a category for routing and
// exit-code mapping, a severity, and structured context; the keys "path" and "stage"
// identify the offending source file and the pipeline stage that failed.
//
// Example usage:
//
//	err := errors.FragmentMissing(fragmentPath).
//		WithCause(readErr).
//		WithStage("imports").
//		Build()
package errors
