package mdx

import "strings"

// RenderFunc produces the replacement text of an element. inner renders the element body
// with the same function applied to its children; callers that drop the element never
// need to call it.
type RenderFunc func(n *Node, inner func() string) string

// Render rewrites the document, replacing each top-level element with fn's output.
// Dangling tags render as empty strings.
func (d *Document) Render(fn RenderFunc) string {
	return renderRange(d.Source, d.Root.Children, d.Root.InnerStart, d.Root.InnerEnd, fn)
}

// Keep is a RenderFunc helper that preserves the element's own tags around its
// rendered body.
func Keep(n *Node, inner func() string) string {
	if n.SelfClosing {
		return n.Outer()
	}
	return n.OpenTag() + inner() + n.CloseTag()
}

// Rewrite parses src and renders it with fn.
func Rewrite(src string, opts Options, fn RenderFunc) (string, []Issue) {
	doc := Parse(src, opts)
	return doc.Render(fn), doc.Issues
}

func renderRange(src string, nodes []*Node, start, end int, fn RenderFunc) string {
	if len(nodes) == 0 {
		return src[start:end]
	}
	var b strings.Builder
	b.Grow(end - start)
	pos := start
	for _, n := range nodes {
		b.WriteString(src[pos:n.Start])
		pos = n.End
		if n.Dangling {
			continue
		}
		node := n
		b.WriteString(fn(node, func() string {
			return renderRange(src, node.Children, node.InnerStart, node.InnerEnd, fn)
		}))
	}
	b.WriteString(src[pos:end])
	return b.String()
}

// RenderInner renders the body of n with fn applied to its children.
func RenderInner(n *Node, fn RenderFunc) string {
	return renderRange(n.src, n.Children, n.InnerStart, n.InnerEnd, fn)
}
