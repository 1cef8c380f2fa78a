package markdown

import "strings"

// InlineLink is an inline link or image found in Markdown text.
type InlineLink struct {
	Image     bool
	Start     int // offset of '[' (or '!' for images)
	End       int // offset just past ')'
	Text      string
	Dest      string
	DestStart int
	DestEnd   int
}

// FindInlineLinks scans src for `[text](dest)` and `![alt](src)` constructs, skipping
// any that start inside skip. Destinations may carry a title (`(dest "title")`) or be
// wrapped in angle brackets; DestStart/DestEnd cover the bare destination only.
//
// Links nested in another link's text (an image inside a link) are reported as well.
func FindInlineLinks(src string, skip Ranges) []InlineLink {
	var out []InlineLink
	for i := 0; i < len(src); i++ {
		if src[i] != '[' || isEscaped(src, i) || skip.Contains(i) {
			continue
		}
		closeBracket := findClosingBracket(src, i)
		if closeBracket < 0 || closeBracket+1 >= len(src) || src[closeBracket+1] != '(' {
			continue
		}
		closeParen := findClosingParen(src, closeBracket+1)
		if closeParen < 0 {
			continue
		}

		link := InlineLink{
			Start: i,
			End:   closeParen + 1,
			Text:  src[i+1 : closeBracket],
		}
		if i > 0 && src[i-1] == '!' && !isEscaped(src, i-1) {
			link.Image = true
			link.Start = i - 1
		}
		link.DestStart, link.DestEnd = destinationBounds(src, closeBracket+2, closeParen)
		link.Dest = src[link.DestStart:link.DestEnd]
		if link.Dest == "" {
			continue
		}
		out = append(out, link)
	}
	return out
}

func isEscaped(src string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && src[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// findClosingBracket returns the index of the ']' matching the '[' at open, or -1.
// Link text does not cross a blank line.
func findClosingBracket(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			if strings.HasPrefix(strings.TrimLeft(src[i+1:], " \t"), "\n") {
				return -1
			}
		}
	}
	return -1
}

// findClosingParen returns the index of the ')' matching the '(' at open, or -1.
func findClosingParen(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			return -1
		}
	}
	return -1
}

func destinationBounds(src string, start, end int) (int, int) {
	for start < end && (src[start] == ' ' || src[start] == '\t') {
		start++
	}
	if start < end && src[start] == '<' {
		if gt := strings.IndexByte(src[start:end], '>'); gt > 0 {
			return start + 1, start + gt
		}
	}
	stop := start
	depth := 0
	for stop < end {
		c := src[stop]
		if c == ' ' || c == '\t' {
			break
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				break
			}
			depth--
		}
		stop++
	}
	return start, stop
}
