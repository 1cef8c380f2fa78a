package mdx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bracket(n *Node, inner func() string) string {
	return "[" + inner() + "]"
}

func TestParse_NestedSameName(t *testing.T) {
	doc := Parse("<A>x<A>y</A>z</A>", Options{Names: []string{"A"}})
	require.Empty(t, doc.Issues)
	require.Len(t, doc.Root.Children, 1)

	outer := doc.Root.Children[0]
	assert.Equal(t, "x<A>y</A>z", outer.Inner())
	require.Len(t, outer.Children, 1)
	assert.Equal(t, "y", outer.Children[0].Inner())
	assert.Same(t, outer, outer.Children[0].Parent)

	assert.Equal(t, "[x[y]z]", doc.Render(bracket))
}

func TestParse_UnclosedOpenerIsStrippedAndChildrenHoisted(t *testing.T) {
	out, issues := Rewrite("<A>x<B>y</B>", Options{Names: []string{"A", "B"}}, bracket)
	assert.Equal(t, "x[y]", out)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "unclosed <A>")
	assert.Equal(t, 1, issues[0].Line)
}

func TestParse_OrphanCloserIsDropped(t *testing.T) {
	out, issues := Rewrite("x\n</A>y", Options{Names: []string{"A"}}, bracket)
	assert.Equal(t, "x\ny", out)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Line)
}

func TestParse_InterleavedCloseUnwindsInner(t *testing.T) {
	out, issues := Rewrite("<A>1<B>2</A>3</B>", Options{Names: []string{"A", "B"}}, bracket)
	// B is never closed inside A; its later closer is an orphan.
	assert.Equal(t, "[12]3", out)
	assert.Len(t, issues, 2)
}

func TestParse_UnknownTagsAreText(t *testing.T) {
	src := "<div><A>x</A><Ab>y</Ab></div>"
	out, _ := Rewrite(src, Options{Names: []string{"A"}}, bracket)
	assert.Equal(t, "<div>[x]<Ab>y</Ab></div>", out)
}

func TestParse_Attributes(t *testing.T) {
	src := "<Tab value=\"a\" label='L' items={[\"x\", \"}\"]} code={`a}${b}`} disabled n=3 />"
	doc := Parse(src, Options{Names: []string{"Tab"}})
	require.Empty(t, doc.Issues)
	require.Len(t, doc.Root.Children, 1)

	n := doc.Root.Children[0]
	assert.True(t, n.SelfClosing)
	assert.Equal(t, "a", n.Attrs.Value("value"))
	assert.Equal(t, "L", n.Attrs.Value("label"))
	assert.Equal(t, `["x", "}"]`, n.Attrs.Value("items"))
	assert.Equal(t, "`a}${b}`", n.Attrs.Value("code"))
	assert.Equal(t, "true", n.Attrs.Value("disabled"))
	assert.Equal(t, "3", n.Attrs.Value("n"))
	assert.False(t, n.Attrs.Has("missing"))

	v, ok := n.Attrs.First("lang", "label")
	assert.True(t, ok)
	assert.Equal(t, "L", v)
}

func TestParse_MultilineOpenTag(t *testing.T) {
	src := "<Admonition\n  type=\"tip\"\n  title=\"Hi\"\n>\nbody\n</Admonition>"
	doc := Parse(src, Options{Names: []string{"Admonition"}})
	require.Len(t, doc.Root.Children, 1)
	n := doc.Root.Children[0]
	assert.Equal(t, "tip", n.Attrs.Value("type"))
	assert.Equal(t, "\nbody\n", n.Inner())
}

func TestParse_MalformedTagReportsIssue(t *testing.T) {
	doc := Parse("<A title=\"open\nno end", Options{Names: []string{"A"}})
	assert.Empty(t, doc.Root.Children)
	require.Len(t, doc.Issues, 1)
	assert.Contains(t, doc.Issues[0].Message, "malformed")
}

func TestParse_SkipsClosedFencesOnly(t *testing.T) {
	opts := Options{Names: []string{"A"}, SkipFences: true}

	out, issues := Rewrite("```\n<A>\n```\n<A>ok</A>\n", opts, bracket)
	assert.Equal(t, "```\n<A>\n```\n[ok]\n", out)
	assert.Empty(t, issues)

	out, _ = Rewrite("```\n<A>ok</A>\n", opts, bracket)
	assert.Equal(t, "```\n[ok]\n", out)
}

func TestParse_RawBody(t *testing.T) {
	src := "<CodeBlock lang=\"tsx\">{`<A>x</A>`}</CodeBlock>"
	doc := Parse(src, Options{Names: []string{"CodeBlock", "A"}, Raw: []string{"CodeBlock"}})
	require.Len(t, doc.Root.Children, 1)
	cb := doc.Root.Children[0]
	assert.Empty(t, cb.Children)
	assert.Equal(t, "{`<A>x</A>`}", cb.Inner())
}

func TestParse_ElementCapStripsRemainingTags(t *testing.T) {
	out, issues := Rewrite("<A>1</A><A>2</A><A>3</A><A>4</A>", Options{Names: []string{"A"}, MaxElements: 2}, bracket)
	assert.Equal(t, "[1][2]34", out)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "element limit")
}

func TestNode_PositionAndText(t *testing.T) {
	src := "intro\n  - <A>a<B>b</B>c</A>"
	doc := Parse(src, Options{Names: []string{"A", "B"}})
	require.Len(t, doc.Root.Children, 1)
	a := doc.Root.Children[0]
	assert.Equal(t, 4, a.Column)
	assert.Equal(t, "  ", a.Indent)
	assert.Equal(t, "abc", a.Text())
	assert.Equal(t, "<A>", a.OpenTag())
	assert.Equal(t, "</A>", a.CloseTag())
	assert.NotNil(t, a.Element("B"))
	assert.Len(t, a.Elements(""), 1)
}

func TestKeepPreservesTags(t *testing.T) {
	src := "<A x=\"1\">a<B/>b</A>"
	out, _ := Rewrite(src, Options{Names: []string{"A", "B"}}, func(n *Node, inner func() string) string {
		if n.Name == "B" {
			return "-"
		}
		return Keep(n, inner)
	})
	assert.Equal(t, "<A x=\"1\">a-b</A>", out)
}

func TestList(t *testing.T) {
	tests := map[string][]string{
		"[ios, android]":        {"ios", "android"},
		`["ios","web"]`:         {"ios", "web"},
		"ios":                   {"ios"},
		"['flutter' , 'unity']": {"flutter", "unity"},
		"":                      nil,
	}
	for in, want := range tests {
		assert.Equal(t, want, List(in), in)
	}
}

func TestStringLiteral(t *testing.T) {
	s, ok := StringLiteral(`"a\"b"`)
	assert.True(t, ok)
	assert.Equal(t, `a"b`, s)

	s, ok = StringLiteral("`line1\\nline2`")
	assert.True(t, ok)
	assert.Equal(t, "line1\nline2", s)

	_, ok = StringLiteral("`x ${y}`")
	assert.False(t, ok)
	_, ok = StringLiteral(`"a" + "b"`)
	assert.False(t, ok)
	_, ok = StringLiteral("props.platform")
	assert.False(t, ok)
}

func TestMatchBrace(t *testing.T) {
	src := "{a: '}', b: `${ {c: 1}.c }`}rest"
	end := MatchBrace(src, 0)
	require.Positive(t, end)
	assert.True(t, strings.HasPrefix(src[end:], "rest"))
	assert.Equal(t, -1, MatchBrace("{open", 0))
}
