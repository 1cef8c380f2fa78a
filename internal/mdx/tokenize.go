// Package mdx parses the closed set of component tags used in MDX documentation sources
// into an element tree and renders rewrites of that tree back into text.
//
// Only tags named in Options.Names are recognized; everything else, including unknown
// JSX and HTML, is treated as text.
package mdx

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/markdown"
)

// DefaultMaxElements bounds the number of elements a single parse builds.
const DefaultMaxElements = 10000

// Options selects the tags to recognize.
type Options struct {
	// Names is the closed set of tag names. Matching is case-sensitive.
	Names []string
	// Raw names keep their body as opaque text: no nested tags are recognized and the
	// first matching closer ends the element.
	Raw []string
	// SkipFences ignores tags inside closed fenced code blocks.
	SkipFences bool
	// MaxElements caps the elements built; 0 means DefaultMaxElements.
	MaxElements int
}

// Tag is a single opening, closing, or self-closing tag.
type Tag struct {
	Name        string
	Start       int
	End         int
	Closing     bool
	SelfClosing bool
	Attrs       Attrs
}

// Issue is a recoverable structural problem found while parsing.
type Issue struct {
	Offset  int
	Line    int
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

// Tokenize returns the recognized tags of src in source order.
func Tokenize(src string, opts Options) ([]Tag, []Issue) {
	names := toSet(opts.Names)
	raw := toSet(opts.Raw)
	var fences markdown.Ranges
	if opts.SkipFences {
		fences = markdown.Fences(src)
	}

	var tags []Tag
	var issues []Issue
	for i := 0; i < len(src); i++ {
		if src[i] != '<' {
			continue
		}
		if fences.Contains(i) {
			continue
		}

		if i+1 < len(src) && src[i+1] == '/' {
			name, end := readName(src, i+2)
			if !names[name] {
				continue
			}
			j := skipSpace(src, end)
			if j >= len(src) || src[j] != '>' {
				issues = append(issues, newIssue(src, i, "malformed closing tag </"+name))
				continue
			}
			tags = append(tags, Tag{Name: name, Start: i, End: j + 1, Closing: true})
			i = j
			continue
		}

		name, end := readName(src, i+1)
		if !names[name] {
			continue
		}
		if end < len(src) && !isSpace(src[end]) && src[end] != '>' && src[end] != '/' {
			continue
		}
		attrs, tagEnd, selfClosing, ok := parseAttrs(src, end)
		if !ok {
			issues = append(issues, newIssue(src, i, "malformed <"+name+"> tag"))
			continue
		}
		tags = append(tags, Tag{Name: name, Start: i, End: tagEnd, SelfClosing: selfClosing, Attrs: attrs})
		i = tagEnd - 1

		if raw[name] && !selfClosing {
			// An unterminated raw body is left for the tree builder to report.
			if cs, ce, ok := findCloser(src, tagEnd, name); ok {
				tags = append(tags, Tag{Name: name, Start: cs, End: ce, Closing: true})
				i = ce - 1
			}
		}
	}
	return tags, issues
}

func findCloser(src string, from int, name string) (int, int, bool) {
	closer := "</" + name
	for pos := from; pos < len(src); {
		k := strings.Index(src[pos:], closer)
		if k < 0 {
			return 0, 0, false
		}
		start := pos + k
		after := skipSpace(src, start+len(closer))
		if after < len(src) && src[after] == '>' {
			return start, after + 1, true
		}
		pos = start + len(closer)
	}
	return 0, 0, false
}

func readName(src string, i int) (string, int) {
	start := i
	for i < len(src) {
		c := src[i]
		if c == '_' || c == '.' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(i > start && c >= '0' && c <= '9') {
			i++
			continue
		}
		break
	}
	return src[start:i], i
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func newIssue(src string, offset int, msg string) Issue {
	return Issue{Offset: offset, Line: strings.Count(src[:offset], "\n") + 1, Message: msg}
}
