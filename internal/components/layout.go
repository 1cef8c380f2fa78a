// Package components converts documentation components (tabs, code blocks, collapsible
// sections, admonitions, API layout and product overview panels) into Markdown.
//
// Every converter is a text-to-text transform over the closed set of tags it owns and
// leaves all other text untouched.
package components

import (
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// pad returns the whitespace that aligns continuation lines with the tag's column.
func pad(n *mdx.Node) string {
	if n.Column <= len(n.Indent) {
		return n.Indent
	}
	return n.Indent + strings.Repeat(" ", n.Column-len(n.Indent))
}

// place strips the first line's padding, since the replacement starts at the tag itself.
func place(n *mdx.Node, block string) string {
	return strings.TrimPrefix(block, pad(n))
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// trimBlankLines drops leading and trailing blank lines.
func trimBlankLines(s string) string {
	lines := splitLines(s)
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// dedent removes the longest whitespace prefix shared by all non-blank lines.
func dedent(s string) string {
	lines := splitLines(s)
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lead := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = lead, false
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return s
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// indent prefixes every non-blank line.
func indent(s, prefix string) string {
	if prefix == "" {
		return s
	}
	lines := splitLines(s)
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// block normalizes a component body: blank edges trimmed, common indentation removed.
func block(s string) string {
	return dedent(trimBlankLines(s))
}

func warnIssues(sink diag.Sink, issues []mdx.Issue) {
	for _, is := range issues {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: is.String()})
	}
}

func orDiscard(sink diag.Sink) diag.Sink {
	if sink == nil {
		return diag.Discard
	}
	return sink
}
