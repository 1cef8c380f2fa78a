// Package jsobj parses the JavaScript object literals used as data files by the
// documentation sources.
//
// The accepted language is the literal subset: objects, arrays, strings in any quote
// style, numbers, true/false/null/undefined, identifiers and member expressions (kept as
// Ident), and '+' concatenation of literals. Comments, unquoted keys and trailing commas
// are tolerated. Errors carry line and column.
package jsobj

import (
	"fmt"
	"strings"
)

// Number is a numeric literal kept in its source form.
type Number string

// Ident is an identifier or member expression (`props.platform`) that cannot be evaluated.
type Ident string

// SyntaxError reports where parsing failed.
type SyntaxError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Options tune evaluation.
type Options struct {
	// Vars resolves ${name} interpolations in template literals. Unresolved
	// interpolations are kept verbatim.
	Vars map[string]string
}

// Parse parses a single value spanning the whole of src.
func Parse(src string) (any, error) {
	return ParseWith(src, Options{})
}

// ParseWith is Parse with options.
func ParseWith(src string, opts Options) (any, error) {
	p := &parser{src: src, opts: opts}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
		p.skip()
	}
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after value", p.src[p.pos])
	}
	return v, nil
}

// ParseObject parses src and requires the result to be an object.
func ParseObject(src string) (map[string]any, error) {
	v, err := Parse(src)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &SyntaxError{Line: 1, Column: 1, Msg: fmt.Sprintf("expected object, got %T", v)}
	}
	return obj, nil
}

type parser struct {
	src  string
	pos  int
	opts Options
}

func (p *parser) errorf(format string, args ...any) error {
	return errorAt(p.src, p.pos, fmt.Sprintf(format, args...))
}

func errorAt(src string, pos int, msg string) *SyntaxError {
	if pos > len(src) {
		pos = len(src)
	}
	line := strings.Count(src[:pos], "\n") + 1
	col := pos - strings.LastIndexByte(src[:pos], '\n')
	return &SyntaxError{Offset: pos, Line: line, Column: col, Msg: msg}
}

// skip advances over whitespace and comments.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], "//"):
			nl := strings.IndexByte(p.src[p.pos:], '\n')
			if nl < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += nl + 1
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 4
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// value parses a primary value followed by any '+' concatenations.
func (p *parser) value() (any, error) {
	v, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		p.skip()
		if p.peek() != '+' {
			return v, nil
		}
		p.pos++
		p.skip()
		start := p.pos
		next, err := p.primary()
		if err != nil {
			return nil, err
		}
		left, lok := concatOperand(v)
		right, rok := concatOperand(next)
		if !lok || !rok {
			return nil, errorAt(p.src, start, "unsupported '+' operand")
		}
		v = left + right
	}
}

func concatOperand(v any) (string, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case Number:
		return string(vv), true
	default:
		return "", false
	}
}

func (p *parser) primary() (any, error) {
	p.skip()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"' || c == '\'':
		return p.quoted()
	case c == '`':
		return p.template()
	case c == '(':
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		p.skip()
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return v, nil
	case c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		return p.ident()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) object() (any, error) {
	p.pos++ // {
	obj := map[string]any{}
	for {
		p.skip()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated object")
		}
		if p.peek() == '}' {
			p.pos++
			return obj, nil
		}
		if strings.HasPrefix(p.src[p.pos:], "...") {
			p.pos += 3
			if _, err := p.primary(); err != nil {
				return nil, err
			}
		} else {
			key, err := p.key()
			if err != nil {
				return nil, err
			}
			p.skip()
			switch p.peek() {
			case ':':
				p.pos++
				v, err := p.value()
				if err != nil {
					return nil, err
				}
				obj[key] = v
			case ',', '}':
				// Shorthand property.
				obj[key] = Ident(key)
			default:
				return nil, p.errorf("expected ':' after key %q", key)
			}
		}
		p.skip()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) key() (string, error) {
	switch c := p.peek(); {
	case c == '"' || c == '\'':
		return p.quoted()
	case c == '`':
		v, err := p.template()
		if err != nil {
			return "", err
		}
		return v.(string), nil
	case c >= '0' && c <= '9':
		n, err := p.number()
		if err != nil {
			return "", err
		}
		return string(n.(Number)), nil
	case isIdentStart(c):
		start := p.pos
		for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
			p.pos++
		}
		return p.src[start:p.pos], nil
	default:
		return "", p.errorf("invalid object key")
	}
}

func (p *parser) array() (any, error) {
	p.pos++ // [
	arr := []any{}
	for {
		p.skip()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			return arr, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		p.skip()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) quoted() (string, error) {
	q := p.src[p.pos]
	start := p.pos
	var b strings.Builder
	for i := p.pos + 1; i < len(p.src); i++ {
		c := p.src[i]
		switch {
		case c == '\\' && i+1 < len(p.src):
			i++
			writeEscape(&b, p.src[i])
		case c == q:
			p.pos = i + 1
			return b.String(), nil
		case c == '\n':
			return "", errorAt(p.src, start, "unterminated string")
		default:
			b.WriteByte(c)
		}
	}
	return "", errorAt(p.src, start, "unterminated string")
}

func (p *parser) template() (any, error) {
	start := p.pos
	var b strings.Builder
	for i := p.pos + 1; i < len(p.src); i++ {
		c := p.src[i]
		switch {
		case c == '\\' && i+1 < len(p.src):
			i++
			writeEscape(&b, p.src[i])
		case c == '`':
			p.pos = i + 1
			return b.String(), nil
		case c == '$' && i+1 < len(p.src) && p.src[i+1] == '{':
			end := strings.IndexByte(p.src[i:], '}')
			if end < 0 {
				return nil, errorAt(p.src, i, "unterminated template substitution")
			}
			expr := p.src[i : i+end+1]
			name := strings.TrimSpace(expr[2 : len(expr)-1])
			if v, ok := p.opts.Vars[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(expr)
			}
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return nil, errorAt(p.src, start, "unterminated template literal")
}

func writeEscape(b *strings.Builder, c byte) {
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\n':
		// Line continuation.
	default:
		b.WriteByte(c)
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '_' {
			digits++
			p.pos++
			continue
		}
		break
	}
	if digits == 0 {
		return nil, errorAt(p.src, start, "invalid number")
	}
	return Number(p.src[start:p.pos]), nil
}

func (p *parser) ident() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentPart(c) || c == '.' {
			p.pos++
			continue
		}
		if c == '[' {
			end := matchSquare(p.src, p.pos)
			if end < 0 {
				return nil, p.errorf("unterminated member expression")
			}
			p.pos = end
			continue
		}
		break
	}
	switch word := p.src[start:p.pos]; word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	default:
		return Ident(word), nil
	}
}

func matchSquare(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '\n':
			return -1
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
