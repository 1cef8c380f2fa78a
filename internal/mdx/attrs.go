package mdx

import (
	"strconv"
	"strings"
)

// AttrKind tells how an attribute value was written.
type AttrKind int

const (
	AttrString AttrKind = iota // name="v" or name='v'
	AttrExpr                   // name={expr}
	AttrBool                   // bare name
	AttrBare                   // name=v (tolerated)
)

// Attr is one JSX attribute.
type Attr struct {
	Name  string
	Value string // unquoted string, or the expression without braces
	Kind  AttrKind
}

// Attrs keeps attributes in source order.
type Attrs []Attr

// Lookup returns the attribute named name.
func (a Attrs) Lookup(name string) (Attr, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attr{}, false
}

// Has reports whether the attribute is present in any form.
func (a Attrs) Has(name string) bool {
	_, ok := a.Lookup(name)
	return ok
}

// Get returns the string value of an attribute. Expressions holding a single string or
// template literal without interpolation are unquoted; other expressions are returned
// as written. Boolean attributes yield "true".
func (a Attrs) Get(name string) (string, bool) {
	attr, ok := a.Lookup(name)
	if !ok {
		return "", false
	}
	switch attr.Kind {
	case AttrBool:
		return "true", true
	case AttrExpr:
		if s, ok := StringLiteral(attr.Value); ok {
			return s, true
		}
		return strings.TrimSpace(attr.Value), true
	default:
		return attr.Value, true
	}
}

// Value returns the string value or "" when absent.
func (a Attrs) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// First returns the value of the first present attribute among names.
func (a Attrs) First(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := a.Get(n); ok {
			return v, true
		}
	}
	return "", false
}

// StringLiteral unquotes a JavaScript string literal ("x", 'x', or `x` without ${}).
func StringLiteral(expr string) (string, bool) {
	s := strings.TrimSpace(expr)
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'' && q != '`') || s[len(s)-1] != q {
		return "", false
	}
	body := s[1 : len(s)-1]
	if q == '`' && strings.Contains(body, "${") {
		return "", false
	}
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' {
			i++
			continue
		}
		if body[i] == q {
			return "", false
		}
	}
	return Unescape(body), true
}

// Unescape resolves the backslash escapes \n, \t, \r and escaped quotes and backslashes.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\'', '`', '\\', '$', '{', '}':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// List parses an allow/deny attribute value into items. Bracketed or bare comma lists are
// accepted, with or without quotes around items: `[ios, android]`, `["ios","web"]`, `ios`.
func List(value string) []string {
	s := strings.TrimSpace(value)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if unq, err := strconv.Unquote(part); err == nil {
			part = unq
		} else {
			part = strings.Trim(part, `"'`+"`")
		}
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAttrs parses attributes starting at pos (just past the tag name) and returns the
// offset just past the closing '>' together with the self-closing flag.
func parseAttrs(src string, pos int) (Attrs, int, bool, bool) {
	var attrs Attrs
	i := pos
	for {
		i = skipSpace(src, i)
		if i >= len(src) {
			return nil, 0, false, false
		}
		switch {
		case strings.HasPrefix(src[i:], "/>"):
			return attrs, i + 2, true, true
		case src[i] == '>':
			return attrs, i + 1, false, true
		case src[i] == '<':
			return nil, 0, false, false
		case src[i] == '{':
			// Spread props ({...props}) carry nothing we resolve.
			end := MatchBrace(src, i)
			if end < 0 {
				return nil, 0, false, false
			}
			i = end
			continue
		}

		nameStart := i
		for i < len(src) && !isSpace(src[i]) && src[i] != '=' && src[i] != '>' && src[i] != '/' && src[i] != '<' {
			i++
		}
		if i == nameStart {
			// Stray '/' not followed by '>'.
			i++
			continue
		}
		name := src[nameStart:i]
		j := skipSpace(src, i)
		if j >= len(src) || src[j] != '=' {
			attrs = append(attrs, Attr{Name: name, Kind: AttrBool})
			continue
		}
		j = skipSpace(src, j+1)
		if j >= len(src) {
			return nil, 0, false, false
		}

		switch src[j] {
		case '"', '\'':
			end := strings.IndexByte(src[j+1:], src[j])
			if end < 0 {
				return nil, 0, false, false
			}
			attrs = append(attrs, Attr{Name: name, Value: src[j+1 : j+1+end], Kind: AttrString})
			i = j + end + 2
		case '{':
			end := MatchBrace(src, j)
			if end < 0 {
				return nil, 0, false, false
			}
			attrs = append(attrs, Attr{Name: name, Value: src[j+1 : end-1], Kind: AttrExpr})
			i = end
		default:
			k := j
			for k < len(src) && !isSpace(src[k]) && src[k] != '>' && !strings.HasPrefix(src[k:], "/>") {
				k++
			}
			attrs = append(attrs, Attr{Name: name, Value: src[j:k], Kind: AttrBare})
			i = k
		}
	}
}

// MatchBrace returns the offset just past the '}' matching the '{' at open, or -1.
// String and template literals (with nested ${} substitutions) are skipped.
func MatchBrace(src string, open int) int {
	return matchBracket(src, open, '{', '}')
}

// MatchBracket is MatchBrace for '[' ... ']'.
func MatchBracket(src string, open int) int {
	return matchBracket(src, open, '[', ']')
}

func matchBracket(src string, open int, opener, closer byte) int {
	if open >= len(src) || src[open] != opener {
		return -1
	}
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '"', '\'':
			end := skipQuoted(src, i)
			if end < 0 {
				return -1
			}
			i = end - 1
		case '`':
			end := skipTemplate(src, i)
			if end < 0 {
				return -1
			}
			i = end - 1
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// skipQuoted returns the offset just past the string literal starting at i.
func skipQuoted(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			return -1
		}
	}
	return -1
}

// skipTemplate returns the offset just past the template literal starting at i.
func skipTemplate(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				end := MatchBrace(src, j+1)
				if end < 0 {
					return -1
				}
				j = end - 1
			}
		}
	}
	return -1
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
