package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ClassifiedError is a structured error with category, severity, and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// Error implements the standard error interface.
//
// The source path and stage are rendered inline so that a bare log line is enough to locate
// the failing document.
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s", e.category, e.severity, e.message)
	stage, path := e.Stage(), e.Path()
	switch {
	case stage != "" && path != "":
		fmt.Fprintf(&b, " (stage=%s path=%s)", stage, path)
	case stage != "":
		fmt.Fprintf(&b, " (stage=%s)", stage)
	case path != "":
		fmt.Fprintf(&b, " (path=%s)", path)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// Path returns the source file recorded in the context, if any.
func (e *ClassifiedError) Path() string {
	return e.context.String(ContextPath)
}

// Stage returns the pipeline stage recorded in the context, if any.
func (e *ClassifiedError) Stage() string {
	return e.context.String(ContextStage)
}

// WithContext returns a copy of the error with an added context value.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	return &ClassifiedError{
		category: e.category,
		severity: e.severity,
		message:  e.message,
		cause:    e.cause,
		context:  e.context.With(key, value),
	}
}

// Is matches another ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsFatal checks if the error is fatal.
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// IsClassified reports whether err's chain contains a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// HasCategory checks if the error chain carries a ClassifiedError of the category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}

// InStage attaches a stage (and path, when not already set) to err.
//
// Unclassified errors are wrapped as internal errors so that every failure leaving the
// pipeline carries the same context shape.
func InStage(err error, stage, path string) error {
	if err == nil {
		return nil
	}
	classified, ok := AsClassified(err)
	if !ok {
		return WrapError(err, CategoryInternal, "conversion failed").
			Fatal().
			WithStage(stage).
			WithPath(path).
			Build()
	}
	if classified.Stage() == "" {
		classified = classified.WithContext(ContextStage, stage)
	}
	if classified.Path() == "" && path != "" {
		classified = classified.WithContext(ContextPath, path)
	}
	return classified
}

// IsFatal reports whether err's chain carries a fatal ClassifiedError.
func IsFatal(err error) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsFatal()
	}
	return false
}
