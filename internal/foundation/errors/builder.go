package errors

import "strings"

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.cause = err
	return b
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithPath records the offending source file.
func (b *ErrorBuilder) WithPath(path string) *ErrorBuilder {
	if path == "" {
		return b
	}
	return b.WithContext(ContextPath, path)
}

// WithStage records the pipeline stage.
func (b *ErrorBuilder) WithStage(stage string) *ErrorBuilder {
	if stage == "" {
		return b
	}
	return b.WithContext(ContextStage, stage)
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// FragmentMissing reports an import or required shared source that cannot be opened.
func FragmentMissing(path string) *ErrorBuilder {
	return NewError(CategoryImport, "referenced fragment not found: "+path).
		Fatal().
		WithContext("fragment", path)
}

// CyclicImport reports a fragment that (transitively) imports itself.
func CyclicImport(chain []string) *ErrorBuilder {
	return NewError(CategoryImport, "cyclic import: "+strings.Join(chain, " -> ")).
		Fatal().
		WithContext("chain", append([]string(nil), chain...))
}

// UnknownScope reports a scoped variable lookup whose product/platform is not defined.
func UnknownScope(dictionary, scope string) *ErrorBuilder {
	return NewError(CategoryVariables, "unknown "+dictionary+" scope: "+scope).
		Fatal().
		WithContext("scope", scope)
}

// ParseError creates a parse error for declarative sources.
func ParseError(message string) *ErrorBuilder {
	return NewError(CategoryParse, message).Fatal()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// ExportError creates a batch export error.
func ExportError(message string) *ErrorBuilder {
	return NewError(CategoryExport, message)
}

// IndexError creates a file-mapping index error.
func IndexError(message string) *ErrorBuilder {
	return NewError(CategoryIndex, message)
}

// NetworkError creates a network error.
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message)
}

// DaemonError creates a daemon error.
func DaemonError(message string) *ErrorBuilder {
	return NewError(CategoryDaemon, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
