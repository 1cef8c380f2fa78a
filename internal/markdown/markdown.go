// Package markdown locates code regions and inline links in Markdown text and applies
// byte-range edits without re-rendering the document.
package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Ranges is a sorted, non-overlapping list of ranges.
type Ranges []Range

// Contains reports whether pos lies inside any range.
func (rs Ranges) Contains(pos int) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].End > pos })
	return i < len(rs) && rs[i].Start <= pos
}

// Overlaps reports whether [start, end) intersects any range.
func (rs Ranges) Overlaps(start, end int) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].End > start })
	return i < len(rs) && rs[i].Start < end
}

// Merge returns the union of sets as a sorted, non-overlapping list.
func Merge(sets ...Ranges) Ranges {
	var all []Range
	for _, rs := range sets {
		all = append(all, rs...)
	}
	return normalize(all)
}

func normalize(rs []Range) Ranges {
	if len(rs) == 0 {
		return nil
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })
	out := Ranges{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Fences returns the ranges of fenced code blocks, fence lines included.
//
// Fences may be indented (MDX nests them inside components). An opening fence without a
// matching closing fence does not produce a range; the rest of the document is scanned as
// ordinary text.
func Fences(src string) Ranges {
	var out []Range
	lines := lineOffsets(src)
	for i := 0; i < len(lines); i++ {
		marker, ok := fenceMarker(lineAt(src, lines, i))
		if !ok {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lineAt(src, lines, j), marker) {
				end := len(src)
				if j+1 < len(lines) {
					end = lines[j+1]
				}
				out = append(out, Range{Start: lines[i], End: end})
				i = j
				break
			}
		}
	}
	return normalize(out)
}

// CodeRanges returns fenced code blocks and inline code spans.
func CodeRanges(src string) Ranges {
	fences := Fences(src)
	out := append([]Range(nil), fences...)

	source := []byte(src)
	root := goldmark.New().Parser().Parse(text.NewReader(source))
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		span, ok := n.(*gmast.CodeSpan)
		if !ok {
			return gmast.WalkContinue, nil
		}
		start, end := -1, -1
		for c := span.FirstChild(); c != nil; c = c.NextSibling() {
			t, ok := c.(*gmast.Text)
			if !ok {
				continue
			}
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > end {
				end = t.Segment.Stop
			}
		}
		if start < 0 {
			return gmast.WalkSkipChildren, nil
		}
		for start > 0 && source[start-1] == '`' {
			start--
		}
		for end < len(source) && source[end] == '`' {
			end++
		}
		out = append(out, Range{Start: start, End: end})
		return gmast.WalkSkipChildren, nil
	})

	return normalize(out)
}

func lineOffsets(src string) []int {
	offsets := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' && i+1 < len(src) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func lineAt(src string, offsets []int, i int) string {
	end := len(src)
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	return strings.TrimRight(src[offsets[i]:end], "\r\n")
}

func fenceMarker(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n < 3 {
			continue
		}
		if ch == '`' && strings.Contains(trimmed[n:], "`") {
			return "", false
		}
		return trimmed[:n], true
	}
	return "", false
}

func isClosingFence(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, marker) {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}

// CollapseBlankLines reduces every run of three or more blank lines outside fenced code
// to a single blank line. Lines holding only whitespace count as blank.
func CollapseBlankLines(src string) string {
	fences := Fences(src)
	offsets := lineOffsets(src)

	var b strings.Builder
	b.Grow(len(src))

	flush := func(run []int) {
		if len(run) >= 3 {
			b.WriteString("\n")
			return
		}
		for _, i := range run {
			b.WriteString(rawLine(src, offsets, i))
		}
	}

	var run []int
	for i, off := range offsets {
		line := rawLine(src, offsets, i)
		if strings.TrimSpace(line) == "" && !fences.Contains(off) && strings.HasSuffix(line, "\n") {
			run = append(run, i)
			continue
		}
		flush(run)
		run = run[:0]
		b.WriteString(line)
	}
	flush(run)
	return b.String()
}

func rawLine(src string, offsets []int, i int) string {
	end := len(src)
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	return src[offsets[i]:end]
}
