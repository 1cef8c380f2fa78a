package components

import (
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

const defaultSummary = "Details"

// Details converts <details><summary>S</summary>body</details> into a bold summary
// line, a blank line, and the body.
func Details(text string, sink diag.Sink) string {
	sink = orDiscard(sink)
	var render mdx.RenderFunc
	render = func(n *mdx.Node, inner func() string) string {
		if n.Name == "summary" {
			// Only reached for a summary outside details.
			return "**" + strings.TrimSpace(inner()) + "**"
		}

		summary := defaultSummary
		if s := n.Element("summary"); s != nil {
			summary = strings.Join(strings.Fields(mdx.RenderInner(s, render)), " ")
		}
		body := block(mdx.RenderInner(n, func(c *mdx.Node, cinner func() string) string {
			if c.Name == "summary" && c.Parent == n {
				return ""
			}
			return render(c, cinner)
		}))

		p := pad(n)
		out := p + "**" + summary + "**"
		if body != "" {
			out += "\n\n" + indent(body, p)
		}
		return place(n, out)
	}

	out, issues := mdx.Rewrite(text, mdx.Options{Names: []string{"details", "summary"}, SkipFences: true}, render)
	warnIssues(sink, issues)
	return out
}
