package diag

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsAndLogs(t *testing.T) {
	var logs bytes.Buffer
	c := NewCollector(slog.New(slog.NewTextHandler(&logs, nil)))

	c.Warn(Warning{Kind: KindAssetMissing, Path: "/docs/a.mdx", Stage: "images", Message: "image not found"})
	c.Warn(Warning{Kind: KindMalformedTag, Message: "unclosed <Tabs>"})

	require.Equal(t, 2, c.Count())
	assert.Equal(t, KindAssetMissing, c.Warnings()[0].Kind)
	assert.Equal(t, map[Kind]int{KindAssetMissing: 1, KindMalformedTag: 1}, c.CountByKind())
	assert.Contains(t, logs.String(), "kind=asset_missing")
	assert.Contains(t, logs.String(), "stage=images")
}

func TestScoped_FillsMissingFields(t *testing.T) {
	c := NewCollector(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	s := Scoped(c, "tabs", "/docs/x.mdx")

	s.Warn(Warning{Kind: KindMalformedTag, Message: "unclosed"})
	s.Warn(Warning{Kind: KindMalformedTag, Path: "/docs/_frag.mdx", Stage: "imports", Message: "orphan"})

	got := c.Warnings()
	assert.Equal(t, "tabs", got[0].Stage)
	assert.Equal(t, "/docs/x.mdx", got[0].Path)
	assert.Equal(t, "imports", got[1].Stage)
	assert.Equal(t, "/docs/_frag.mdx", got[1].Path)
}

func TestWarning_String(t *testing.T) {
	w := Warning{Kind: KindBrokenLink, Path: "a.mdx", Message: "target missing"}
	assert.Equal(t, "broken_link: target missing (a.mdx)", w.String())
}
