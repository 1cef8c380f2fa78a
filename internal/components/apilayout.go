package components

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

var apiLayoutTags = []string{
	"APILayout", "LeftColumn", "RightColumn",
	"PathParameter", "ParameterList", "Parameter",
	"Section", "ExampleTab",
}

const pathParametersHeading = "Path parameters"

// APILayout converts two-column API reference panels. The left column lists path
// parameters and parameter lists as nested bullets; the right column renders each
// section under a level-2 heading, with example sections shown as labelled code.
func APILayout(text string, sink diag.Sink) string {
	sink = orDiscard(sink)
	out, issues := mdx.Rewrite(text, mdx.Options{
		Names:      apiLayoutTags,
		Raw:        []string{"ExampleTab"},
		SkipFences: true,
	}, func(n *mdx.Node, inner func() string) string {
		if n.Name != "APILayout" {
			return mdx.Keep(n, inner)
		}
		var sections []string
		for _, col := range n.Elements("") {
			switch col.Name {
			case "LeftColumn":
				sections = append(sections, leftColumn(col)...)
			case "RightColumn":
				sections = append(sections, rightColumn(col, sink)...)
			default:
				sections = append(sections, leftColumn(&mdx.Node{Children: []*mdx.Node{col}})...)
			}
		}
		return strings.Join(sections, "\n\n")
	})
	warnIssues(sink, issues)
	return out
}

func leftColumn(col *mdx.Node) []string {
	var sections []string
	var pathParams []string
	flushPath := func() {
		if len(pathParams) > 0 {
			sections = append(sections, "## "+pathParametersHeading+"\n\n"+strings.Join(pathParams, "\n"))
			pathParams = nil
		}
	}
	for _, c := range col.Elements("") {
		switch c.Name {
		case "PathParameter":
			pathParams = append(pathParams, parameter(c, 0))
		case "ParameterList":
			flushPath()
			var b strings.Builder
			if title := strings.TrimSpace(c.Attrs.Value("title")); title != "" {
				b.WriteString("## " + title + "\n\n")
			}
			b.WriteString(parameterList(c, 0))
			sections = append(sections, strings.TrimRight(b.String(), "\n"))
		case "Parameter":
			flushPath()
			sections = append(sections, parameter(c, 0))
		}
	}
	flushPath()
	return sections
}

func parameterList(list *mdx.Node, depth int) string {
	var lines []string
	for _, c := range list.Elements("") {
		switch c.Name {
		case "Parameter", "PathParameter":
			lines = append(lines, parameter(c, depth))
		case "ParameterList":
			lines = append(lines, nestedList(c, depth))
		}
	}
	return strings.Join(lines, "\n")
}

func nestedList(list *mdx.Node, depth int) string {
	title := strings.TrimSpace(list.Attrs.Value("title"))
	items := parameterList(list, depth+1)
	if title == "" {
		return parameterList(list, depth)
	}
	head := bullet(depth) + "**" + title + "**"
	if items == "" {
		return head
	}
	return head + "\n" + items
}

// parameter renders `- name (type, required, default: d): description` with possible
// values, description lists and nested parameters as deeper bullets.
func parameter(p *mdx.Node, depth int) string {
	name := p.Attrs.Value("name")
	var meta []string
	if t := strings.TrimSpace(p.Attrs.Value("type")); t != "" {
		meta = append(meta, t)
	}
	if isTrue(p.Attrs, "required") {
		meta = append(meta, "required")
	} else {
		meta = append(meta, "optional")
	}
	if d, ok := p.Attrs.Get("default"); ok && d != "" {
		meta = append(meta, "default: `"+d+"`")
	}

	line := bullet(depth) + "`" + name + "` (" + strings.Join(meta, ", ") + ")"
	descLines := descriptionLines(p.OwnText())
	if len(descLines) > 0 && !isListLine(descLines[0]) {
		line += ": " + descLines[0]
		descLines = descLines[1:]
	}

	lines := []string{line}
	for _, l := range descLines {
		if item, ok := listItem(l); ok {
			lines = append(lines, bullet(depth+1)+item)
			continue
		}
		lines = append(lines, indentFor(depth+1)+l)
	}
	if pv, ok := p.Attrs.Get("possibleValues"); ok {
		if values := mdx.List(pv); len(values) > 0 {
			quoted := make([]string, len(values))
			for i, v := range values {
				quoted[i] = "`" + v + "`"
			}
			lines = append(lines, bullet(depth+1)+"Possible values: "+strings.Join(quoted, ", "))
		}
	}
	for _, c := range p.Elements("") {
		switch c.Name {
		case "ParameterList":
			lines = append(lines, nestedList(c, depth+1))
		case "Parameter":
			lines = append(lines, parameter(c, depth+1))
		}
	}
	return strings.Join(lines, "\n")
}

func rightColumn(col *mdx.Node, sink diag.Sink) []string {
	var sections []string
	for _, s := range col.Elements("Section") {
		title := strings.TrimSpace(s.Attrs.Value("title"))
		var body string
		if strings.Contains(strings.ToLower(title), "example") {
			body = examples(s)
		} else {
			body = strings.Join(descriptionLines(s.Text()), "\n")
		}
		if title == "" {
			sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: "<Section> without title"})
			sections = append(sections, body)
			continue
		}
		if body == "" {
			sections = append(sections, "## "+title)
			continue
		}
		sections = append(sections, "## "+title+"\n\n"+body)
	}
	return sections
}

func examples(section *mdx.Node) string {
	var parts []string
	for _, tab := range section.Elements("ExampleTab") {
		label, ok := tab.Attrs.First("label", "value")
		if !ok {
			label = defaultTabLabel
		}
		lang, _ := tab.Attrs.First("language", "lang")
		code := codeContent(tab.Inner())
		if strings.Contains(code, "```") {
			// Already fenced by the code block pass.
			parts = append(parts, "**"+label+"**\n\n"+block(code))
			continue
		}
		parts = append(parts, "**"+label+"**\n\n"+fence(code, lang, ""))
	}
	if len(parts) == 0 {
		return block(section.Text())
	}
	return strings.Join(parts, "\n\n")
}

// descriptionLines reduces HTML-bearing text to trimmed, non-empty Markdown lines.
func descriptionLines(s string) []string {
	var out []string
	for _, l := range splitLines(htmlText(s)) {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// htmlText extracts text from a fragment that may mix Markdown and HTML. Block elements
// start new lines, list items become bullets, and inline code keeps its backticks.
func htmlText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return s
			}
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); tag {
			case "br", "p", "div", "ul", "ol", "tr":
				b.WriteString("\n")
			case "li":
				if tt == html.StartTagToken {
					b.WriteString("\n- ")
				}
			case "code":
				b.WriteString("`")
			case "strong", "b":
				b.WriteString("**")
			}
		}
	}
}

func isListLine(l string) bool {
	_, ok := listItem(l)
	return ok
}

func listItem(l string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(l, marker) {
			return strings.TrimSpace(l[len(marker):]), true
		}
	}
	return "", false
}

func bullet(depth int) string {
	return indentFor(depth) + "- "
}

func indentFor(depth int) string {
	return strings.Repeat("  ", depth)
}

func isTrue(attrs mdx.Attrs, name string) bool {
	v, ok := attrs.Get(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "true", "yes", "1":
		return true
	}
	return false
}
