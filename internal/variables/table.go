// Package variables loads the documentation variable sources and substitutes variable
// tags in document text.
//
// Globals come from `export const NAME = 'value'` declaration lines whose values may
// reference each other as ${NAME}. Scoped dictionaries map a product or platform id to
// its own key/value table.
package variables

import (
	"os"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// Declaration is one parsed `NAME = value` line.
type Declaration struct {
	Name string
	Raw  string
	Line int
}

var (
	declRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:(?:const|let|var)\s+)?([A-Za-z_$][\w$]*)\s*=\s*(.+?)\s*;?\s*$`)
	refRe  = regexp.MustCompile(`\$\{\s*([A-Za-z_$][\w$]*)\s*\}`)
)

// ParseDeclarations scans src line by line. Surrounding quotes or backticks are stripped
// from values; a later declaration of the same name replaces an earlier one.
func ParseDeclarations(src string) []Declaration {
	var out []Declaration
	for i, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "import ") {
			continue
		}
		m := declRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Declaration{Name: m[1], Raw: unquote(m[2]), Line: i + 1})
	}
	return out
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return v[1 : len(v)-1]
		}
	}
	return strings.Trim(v, "'\"`")
}

// Table maps variable names to fully resolved values.
type Table struct {
	values map[string]string
}

// Resolve expands ${name} references between declarations.
//
// Undefined names expand to the empty string. References between members of a cycle are
// left as written, so the result does not depend on declaration order.
func Resolve(decls []Declaration) *Table {
	raw := make(map[string]string, len(decls))
	refs := make(map[string][]string, len(decls))
	for _, d := range decls {
		raw[d.Name] = d.Raw
	}
	for name, v := range raw {
		for _, m := range refRe.FindAllStringSubmatch(v, -1) {
			refs[name] = append(refs[name], m[1])
		}
	}

	reach := make(map[string]map[string]bool)
	reachable := func(from string) map[string]bool {
		if r, ok := reach[from]; ok {
			return r
		}
		seen := map[string]bool{}
		queue := append([]string(nil), refs[from]...)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, refs[n]...)
		}
		reach[from] = seen
		return seen
	}

	t := &Table{values: make(map[string]string, len(raw))}
	var resolve func(name string) string
	resolve = func(name string) string {
		if v, ok := t.values[name]; ok {
			return v
		}
		v := refRe.ReplaceAllStringFunc(raw[name], func(ref string) string {
			dep := refRe.FindStringSubmatch(ref)[1]
			if _, ok := raw[dep]; !ok {
				return ""
			}
			if dep == name || reachable(dep)[name] {
				return ref
			}
			return resolve(dep)
		})
		t.values[name] = v
		return v
	}

	for _, d := range decls {
		resolve(d.Name)
	}
	return t
}

// NewTable builds a table from already resolved values.
func NewTable(values map[string]string) *Table {
	t := &Table{values: make(map[string]string, len(values))}
	for k, v := range values {
		t.values[k] = v
	}
	return t
}

// Get returns the resolved value of name.
func (t *Table) Get(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[name]
	return v, ok
}

// Len returns the number of variables.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// LoadGlobals reads and resolves the global variable source at path.
func LoadGlobals(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FragmentMissing(path).WithCause(err).WithPath(path).Build()
	}
	return Resolve(ParseDeclarations(string(data))), nil
}
