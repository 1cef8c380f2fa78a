package imports

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/jsobj"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// Bag is the exported values of a namespace import.
type Bag map[string]any

// ParseBag reads the `export const name = value` declarations of a fragment.
func ParseBag(src string) (Bag, error) {
	exports, err := jsobj.Exports(src, jsobj.Options{})
	if err != nil {
		return nil, err
	}
	return Bag(exports), nil
}

// SubstituteNamespace replaces `{alias.prop}`, `{alias.prop.key}` and
// `{alias.prop[selector]}` expressions with values from bag. A selector is either a
// quoted key or an expression standing for the active platform (`props.platform`).
// Expressions that do not resolve to a scalar are left unchanged.
func SubstituteNamespace(text, alias string, bag Bag, platform string, sink diag.Sink) string {
	if sink == nil {
		sink = diag.Discard
	}
	prefix := "{" + alias + "."
	fences := markdown.Fences(text)

	var edits []markdown.Edit
	for pos := 0; pos < len(text); {
		k := strings.Index(text[pos:], prefix)
		if k < 0 {
			break
		}
		start := pos + k
		end := mdx.MatchBrace(text, start)
		if end < 0 {
			pos = start + len(prefix)
			continue
		}
		pos = end
		if fences.Contains(start) {
			continue
		}

		expr := text[start+1 : end-1]
		v, ok := evalPath(strings.TrimSpace(expr[len(alias)+1:]), bag, platform)
		if !ok {
			sink.Warn(diag.Warning{
				Kind:    diag.KindUnresolvedReference,
				Message: fmt.Sprintf("unresolved namespace expression {%s}", expr),
			})
			continue
		}
		edits = append(edits, markdown.Edit{Start: start, End: end, Replacement: v})
	}

	out, err := markdown.ApplyEdits(text, edits)
	if err != nil {
		return text
	}
	return out
}

// evalPath walks `prop(.key|[sel])*` through bag.
func evalPath(path string, bag Bag, platform string) (string, bool) {
	var cur any = map[string]any(bag)
	for path != "" {
		var key string
		switch {
		case path[0] == '.':
			path = path[1:]
			fallthrough
		case isIdentByte(path[0]):
			n := 0
			for n < len(path) && isIdentByte(path[n]) {
				n++
			}
			if n == 0 {
				return "", false
			}
			key, path = path[:n], path[n:]
		case path[0] == '[':
			end := strings.IndexByte(path, ']')
			if end < 0 {
				return "", false
			}
			sel := strings.TrimSpace(path[1:end])
			path = path[end+1:]
			if lit, ok := mdx.StringLiteral(sel); ok {
				key = lit
			} else {
				key = platform
			}
		default:
			return "", false
		}

		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = obj[key]; !ok {
			return "", false
		}
	}
	return jsobj.String(cur)
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
