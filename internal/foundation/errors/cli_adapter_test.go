package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "missing fragment", err: FragmentMissing("a.mdx").Build(), expected: 3},
		{name: "unknown scope", err: UnknownScope("platform", "tizen").Build(), expected: 3},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "export", err: ExportError("2 documents failed").Build(), expected: 11},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	t.Run("non-verbose shows message, file and stage", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, slog.Default())
		err := FragmentMissing("/docs/shared/_a.mdx").WithPath("/docs/p/x.mdx").WithStage("imports").Build()

		out := adapter.FormatError(err)
		assert.Contains(t, out, "referenced fragment not found")
		assert.Contains(t, out, "file:  /docs/p/x.mdx")
		assert.Contains(t, out, "stage: imports")
	})

	t.Run("non-verbose hides internal details", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, slog.Default())
		assert.Contains(t, adapter.FormatError(InternalError("nil map").Build()), "use -v for details")
	})

	t.Run("verbose shows the full error", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, slog.Default())
		out := adapter.FormatError(InternalError("nil map").Build())
		assert.Contains(t, out, "[internal:fatal] nil map")
	})

	t.Run("unclassified", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, slog.Default())
		assert.Equal(t, "Error: boom", adapter.FormatError(errors.New("boom")))
	})
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var stderr, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("docs_root is required").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, stderr.String(), "docs_root is required")
	assert.Contains(t, logs.String(), "category=config")
}
