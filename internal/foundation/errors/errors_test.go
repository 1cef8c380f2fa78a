package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "mdx2md.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		_, exists := err.Context().Get("file")
		require.True(t, exists)
		assert.Equal(t, "mdx2md.yaml", err.Context().String("file"))
	})

	t.Run("Path and stage render in message", func(t *testing.T) {
		err := FragmentMissing("/docs/shared/_missing.mdx").
			WithStage("imports").
			WithPath("/docs/video/get-started.mdx").
			Build()

		msg := err.Error()
		assert.Contains(t, msg, "/docs/shared/_missing.mdx")
		assert.Contains(t, msg, "stage=imports")
		assert.Contains(t, msg, "path=/docs/video/get-started.mdx")
		assert.True(t, err.IsFatal())
		assert.True(t, err.IsCategory(CategoryImport))
	})

	t.Run("Wrapped cause is reachable", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := WrapError(cause, CategoryFileSystem, "cannot copy asset").Build()

		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := CyclicImport([]string{"a.mdx", "b.mdx", "a.mdx"}).Build()
	outer := fmt.Errorf("converting: %w", inner)

	got, ok := AsClassified(outer)
	require.True(t, ok)
	assert.Equal(t, CategoryImport, got.Category())
	assert.Contains(t, got.Message(), "a.mdx -> b.mdx -> a.mdx")
	assert.True(t, HasCategory(outer, CategoryImport))
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}

func TestInStage(t *testing.T) {
	t.Run("adds stage and path to classified errors", func(t *testing.T) {
		err := InStage(UnknownScope("product", "chat").Build(), "variables", "/docs/a.mdx")

		classified, ok := AsClassified(err)
		require.True(t, ok)
		assert.Equal(t, "variables", classified.Stage())
		assert.Equal(t, "/docs/a.mdx", classified.Path())
	})

	t.Run("keeps an existing stage", func(t *testing.T) {
		err := InStage(FragmentMissing("x.mdx").WithStage("imports").Build(), "assemble", "/docs/a.mdx")

		classified, _ := AsClassified(err)
		assert.Equal(t, "imports", classified.Stage())
	})

	t.Run("wraps unclassified errors", func(t *testing.T) {
		err := InStage(errors.New("boom"), "images", "/docs/a.mdx")

		classified, ok := AsClassified(err)
		require.True(t, ok)
		assert.Equal(t, CategoryInternal, classified.Category())
		assert.Equal(t, "images", classified.Stage())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, InStage(nil, "read", ""))
	})
}

func TestErrorContext(t *testing.T) {
	base := ErrorContext{}.Set(ContextPath, "/docs/a.mdx").Set("line", 3)

	next := base.With(ContextStage, "variables")

	assert.Equal(t, "variables", next.String(ContextStage))
	assert.Equal(t, "/docs/a.mdx", next.String(ContextPath))
	assert.Empty(t, base.String(ContextStage))
	assert.Empty(t, next.String("line"))

	_, exists := next.Get("missing")
	assert.False(t, exists)

	var empty ErrorContext
	assert.Empty(t, empty.String(ContextPath))
	assert.Equal(t, "x", empty.With("k", "x").String("k"))
}
