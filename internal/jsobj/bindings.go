package jsobj

import (
	"fmt"
	"regexp"
)

var bindingRe = regexp.MustCompile(`(?m)^[ \t]*(export[ \t]+)?(?:const|let|var)[ \t]+([A-Za-z_$][\w$]*)[ \t]*=[ \t]*`)

// Binding is a top-level `[export] const NAME = value` declaration.
type Binding struct {
	Name     string
	Exported bool
	Value    any
	Offset   int // offset of the value in the source
}

// ValueAt parses one value starting at offset and returns it with the offset just past it.
func ValueAt(src string, offset int, opts Options) (any, int, error) {
	p := &parser{src: src, pos: offset, opts: opts}
	v, err := p.value()
	if err != nil {
		return nil, 0, err
	}
	return v, p.pos, nil
}

// Bindings parses every top-level declaration in src, in source order.
func Bindings(src string, opts Options) ([]Binding, error) {
	var out []Binding
	for _, m := range bindingRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[m[4]:m[5]]
		v, _, err := ValueAt(src, m[1], opts)
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", name, err)
		}
		out = append(out, Binding{Name: name, Exported: m[2] >= 0, Value: v, Offset: m[1]})
	}
	return out, nil
}

// Lookup parses the declaration named name. ok is false when src declares no such name.
func Lookup(src, name string, opts Options) (v any, ok bool, err error) {
	for _, m := range bindingRe.FindAllStringSubmatchIndex(src, -1) {
		if src[m[4]:m[5]] != name {
			continue
		}
		v, _, err := ValueAt(src, m[1], opts)
		if err != nil {
			return nil, true, fmt.Errorf("const %s: %w", name, err)
		}
		return v, true, nil
	}
	return nil, false, nil
}

// Exports returns the exported declarations of src by name.
func Exports(src string, opts Options) (map[string]any, error) {
	bindings, err := Bindings(src, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(bindings))
	for _, b := range bindings {
		if b.Exported {
			out[b.Name] = b.Value
		}
	}
	return out, nil
}

// String renders scalar values as text. Objects and arrays are not scalars.
func String(v any) (string, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case Number:
		return string(vv), true
	case bool:
		if vv {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
