package components

import (
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// CodeBlocks converts <CodeBlock language="x"> elements into fenced code.
//
// The body may be a template or string literal expression ({`...`}), in which case
// JavaScript escapes are resolved, or raw text taken as written. A `code` attribute is
// used when the body is empty.
func CodeBlocks(text string, sink diag.Sink) string {
	sink = orDiscard(sink)
	out, issues := mdx.Rewrite(text, mdx.Options{
		Names:      []string{"CodeBlock"},
		Raw:        []string{"CodeBlock"},
		SkipFences: true,
	}, func(n *mdx.Node, _ func() string) string {
		code := codeContent(n.Inner())
		if strings.TrimSpace(code) == "" {
			if attr, ok := n.Attrs.Get("code"); ok {
				code = mdx.Unescape(attr)
			}
		}
		lang, _ := n.Attrs.First("language", "lang")
		return place(n, fence(code, lang, pad(n)))
	})
	warnIssues(sink, issues)
	return out
}

// codeContent extracts the code of a component body.
func codeContent(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") && mdx.MatchBrace(trimmed, 0) == len(trimmed) {
		expr := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if len(expr) >= 2 && expr[0] == '`' && expr[len(expr)-1] == '`' {
			// Interpolations stay as written; they are part of the sample.
			return mdx.Unescape(expr[1 : len(expr)-1])
		}
		if s, ok := mdx.StringLiteral(expr); ok {
			return s
		}
	}
	return body
}

// fence wraps code in a fence aligned at p. The fence grows when the code itself holds
// backtick runs.
func fence(code, lang, p string) string {
	code = block(code)
	marker := strings.Repeat("`", max(3, longestRun(code, '`')+1))
	var b strings.Builder
	b.WriteString(p + marker + strings.TrimSpace(lang) + "\n")
	if code != "" {
		b.WriteString(indent(code, p) + "\n")
	}
	b.WriteString(p + marker)
	return b.String()
}

func longestRun(s string, c byte) int {
	best, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			best = max(best, run)
			continue
		}
		run = 0
	}
	return best
}
