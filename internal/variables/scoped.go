package variables

import (
	"os"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/jsobj"
)

// DataBinding is the declaration holding a scoped dictionary.
const DataBinding = "data"

// Scoped is a two-level dictionary: scope id, then key.
type Scoped struct {
	name   string
	scopes map[string]map[string]string
}

// NewScoped builds a dictionary from plain maps.
func NewScoped(name string, scopes map[string]map[string]string) *Scoped {
	s := &Scoped{name: name, scopes: make(map[string]map[string]string, len(scopes))}
	for scope, kv := range scopes {
		inner := make(map[string]string, len(kv))
		for k, v := range kv {
			inner[k] = v
		}
		s.scopes[scope] = inner
	}
	return s
}

// ParseScoped reads the `const data = {...}` declaration of src. Non-object scopes are
// skipped; non-scalar values inside a scope are skipped as well.
func ParseScoped(name, src string) (*Scoped, error) {
	v, ok, err := jsobj.Lookup(src, DataBinding, jsobj.Options{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &jsobj.SyntaxError{Line: 1, Column: 1, Msg: "no `const " + DataBinding + "` declaration"}
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, &jsobj.SyntaxError{Line: 1, Column: 1, Msg: "`" + DataBinding + "` is not an object"}
	}

	s := &Scoped{name: name, scopes: make(map[string]map[string]string, len(obj))}
	for scope, raw := range obj {
		kv, isObj := raw.(map[string]any)
		if !isObj {
			continue
		}
		inner := make(map[string]string, len(kv))
		for k, val := range kv {
			if str, ok := jsobj.String(val); ok {
				inner[k] = str
			}
		}
		s.scopes[scope] = inner
	}
	return s, nil
}

// LoadScoped reads a scoped dictionary source. A missing file is a missing fragment;
// a malformed one is a parse error carrying line and column.
func LoadScoped(name, path string) (*Scoped, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FragmentMissing(path).WithCause(err).WithPath(path).Build()
	}
	s, err := ParseScoped(name, string(data))
	if err != nil {
		return nil, ferrors.ParseError("cannot parse " + name + " dictionary: " + err.Error()).
			WithCause(err).
			WithPath(path).
			Build()
	}
	return s, nil
}

// Name identifies the dictionary in messages ("product", "platform").
func (s *Scoped) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// HasScope reports whether scope is defined.
func (s *Scoped) HasScope(scope string) bool {
	if s == nil {
		return false
	}
	_, ok := s.scopes[scope]
	return ok
}

// Lookup returns the value of key within scope.
func (s *Scoped) Lookup(scope, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	kv, ok := s.scopes[scope]
	if !ok {
		return "", false
	}
	v, ok := kv[key]
	return v, ok
}

// Replace returns the value of key within scope, or tag when either is absent.
func (s *Scoped) Replace(tag, scope, key string) string {
	if v, ok := s.Lookup(scope, key); ok {
		return v
	}
	return tag
}
