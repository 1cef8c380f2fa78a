package components

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// admonitionIcons maps the supported admonition types to their marker.
var admonitionIcons = map[string]string{
	"note":      "📝",
	"tip":       "💡",
	"info":      "ℹ️",
	"caution":   "⚠️",
	"warning":   "⚠️",
	"danger":    "🚨",
	"important": "❗",
	"success":   "✅",
}

const fallbackAdmonition = "note"

// Admonitions converts <Admonition type="..." title="..."> into a blockquote headed by
// the type's icon and title. Empty quote lines are dropped outside fenced code.
func Admonitions(text string, sink diag.Sink) string {
	sink = orDiscard(sink)
	out, issues := mdx.Rewrite(text, mdx.Options{Names: []string{"Admonition"}, SkipFences: true}, func(n *mdx.Node, inner func() string) string {
		typ := strings.ToLower(strings.TrimSpace(n.Attrs.Value("type")))
		if typ == "" {
			typ = fallbackAdmonition
		}
		icon, known := admonitionIcons[typ]
		if !known {
			sink.Warn(diag.Warning{
				Kind:    diag.KindUnresolvedReference,
				Message: fmt.Sprintf("unknown admonition type %q; rendered as %s", typ, fallbackAdmonition),
			})
			typ = fallbackAdmonition
			icon = admonitionIcons[typ]
		}

		title := cases.Title(language.English).String(typ)
		if t, ok := n.Attrs.Get("title"); ok && strings.TrimSpace(t) != "" {
			title = strings.TrimSpace(t)
		}

		p := pad(n)
		lines := []string{p + "> " + icon + " **" + title + "**"}
		body := strings.ReplaceAll(block(inner()), "\r\n", "\n")
		code := markdown.Fences(body)
		offset := 0
		for _, l := range splitLines(body) {
			at := offset
			offset += len(l) + 1
			if strings.TrimSpace(l) == "" {
				if code.Contains(at) {
					lines = append(lines, p+">")
				}
				continue
			}
			lines = append(lines, p+"> "+l)
		}
		return place(n, strings.Join(lines, "\n"))
	})
	warnIssues(sink, issues)
	return out
}
