package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFences_IndentedAndTilde(t *testing.T) {
	src := "intro\n  ```js\n  let a = [x](y)\n  ```\nmid\n~~~~\nraw\n~~~~\nend\n"
	fences := Fences(src)
	require.Len(t, fences, 2)

	assert.True(t, fences.Contains(strings.Index(src, "[x]")))
	assert.True(t, fences.Contains(strings.Index(src, "raw")))
	assert.False(t, fences.Contains(strings.Index(src, "mid")))
	assert.False(t, fences.Contains(strings.Index(src, "end")))
}

func TestFences_UnclosedFenceIsNotARange(t *testing.T) {
	src := "```js\nconst a = 1\n[link](x)\n"
	assert.Empty(t, Fences(src))
}

func TestFences_LongerFenceNeedsMatchingClose(t *testing.T) {
	src := "````md\n```\ninner\n```\n````\nafter\n"
	fences := Fences(src)
	require.Len(t, fences, 1)
	assert.True(t, fences.Contains(strings.Index(src, "inner")))
	assert.False(t, fences.Contains(strings.Index(src, "after")))
}

func TestCodeRanges_IncludesCodeSpans(t *testing.T) {
	src := "Use `[a](b)` or ``x ` y`` then [c](d).\n"
	ranges := CodeRanges(src)

	assert.True(t, ranges.Contains(strings.Index(src, "[a]")))
	assert.True(t, ranges.Contains(strings.Index(src, "x ` y")))
	assert.False(t, ranges.Contains(strings.Index(src, "[c]")))
}

func TestRanges_Overlaps(t *testing.T) {
	rs := Ranges{{Start: 5, End: 10}, {Start: 20, End: 25}}
	assert.True(t, rs.Overlaps(8, 12))
	assert.True(t, rs.Overlaps(0, 6))
	assert.False(t, rs.Overlaps(10, 20))
	assert.False(t, rs.Overlaps(25, 30))
}

func TestCollapseBlankLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"three blank lines", "a\n\n\n\nb\n", "a\n\nb\n"},
		{"whitespace lines count", "a\n  \n\t\n \nb\n", "a\n\nb\n"},
		{"two blank lines kept", "a\n\n\nb\n", "a\n\n\nb\n"},
		{"fenced code untouched", "```\nx\n\n\n\ny\n```\n", "```\nx\n\n\n\ny\n```\n"},
		{"trailing run", "a\n\n\n\n", "a\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollapseBlankLines(tt.in))
		})
	}
}

func TestFindInlineLinks(t *testing.T) {
	src := "See [guide](./guide.mdx#setup \"Guide\") and ![logo](</img/a b.png>).\n"
	links := FindInlineLinks(src, nil)
	require.Len(t, links, 2)

	assert.False(t, links[0].Image)
	assert.Equal(t, "guide", links[0].Text)
	assert.Equal(t, "./guide.mdx#setup", links[0].Dest)
	assert.Equal(t, links[0].Dest, src[links[0].DestStart:links[0].DestEnd])

	assert.True(t, links[1].Image)
	assert.Equal(t, "logo", links[1].Text)
	assert.Equal(t, "/img/a b.png", links[1].Dest)
	assert.Equal(t, "!", src[links[1].Start:links[1].Start+1])
}

func TestFindInlineLinks_NestedImageAndParens(t *testing.T) {
	src := "[![badge](/b.svg)](https://x.io/a_(b))"
	links := FindInlineLinks(src, nil)
	require.Len(t, links, 2)
	assert.Equal(t, "https://x.io/a_(b)", links[0].Dest)
	assert.Equal(t, "/b.svg", links[1].Dest)
	assert.True(t, links[1].Image)
}

func TestFindInlineLinks_SkipsCodeAndEscapes(t *testing.T) {
	src := "`[a](b)` \\[c](d) [e](f)\n```\n[g](h)\n```\n"
	links := FindInlineLinks(src, CodeRanges(src))
	require.Len(t, links, 1)
	assert.Equal(t, "f", links[0].Dest)
}
