package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryImport covers fragment resolution: missing or cyclic imports.
	CategoryImport    ErrorCategory = "import"
	CategoryVariables ErrorCategory = "variables"
	CategoryParse     ErrorCategory = "parse"

	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryExport     ErrorCategory = "export"
	CategoryIndex      ErrorCategory = "index"
	CategoryNetwork    ErrorCategory = "network"

	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the current document
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// Well-known context keys.
const (
	ContextPath  = "path"
	ContextStage = "stage"
)

// ErrorContext carries structured fields attached to an error.
type ErrorContext map[string]any

// Set stores value under key, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// String returns the value under key when it is a string, and "" otherwise.
func (c ErrorContext) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// With returns a copy of c with key set; c itself is not modified.
func (c ErrorContext) With(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}
