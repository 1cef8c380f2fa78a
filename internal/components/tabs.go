package components

import (
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

const defaultTabLabel = "Tab"

// Tabs converts <Tabs> containers. Each <TabItem> becomes its label in bold, a blank
// line, and its content aligned with the container. Items are separated by a blank line.
func Tabs(text string, sink diag.Sink) string {
	sink = orDiscard(sink)
	var render mdx.RenderFunc
	render = func(n *mdx.Node, inner func() string) string {
		switch n.Name {
		case "Tabs":
			p := pad(n)
			var parts []string
			for _, c := range n.Children {
				if c.Dangling {
					continue
				}
				if c.Name != "TabItem" {
					sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: "<Tabs> holds a nested <Tabs> outside any <TabItem>"})
					parts = append(parts, indent(block(render(c, func() string { return mdx.RenderInner(c, render) })), p))
					continue
				}
				parts = append(parts, tabItem(c, p, render))
			}
			return place(n, strings.Join(parts, "\n\n"))
		default:
			return place(n, tabItem(n, pad(n), render))
		}
	}

	out, issues := mdx.Rewrite(text, mdx.Options{Names: []string{"Tabs", "TabItem"}, SkipFences: true}, render)
	warnIssues(sink, issues)
	return out
}

func tabItem(n *mdx.Node, p string, render mdx.RenderFunc) string {
	label, ok := n.Attrs.First("label", "value")
	if !ok || strings.TrimSpace(label) == "" {
		label = defaultTabLabel
	}
	head := p + "**" + strings.TrimSpace(label) + "**"
	body := block(mdx.RenderInner(n, render))
	if body == "" {
		return head
	}
	return head + "\n\n" + indent(body, p)
}
