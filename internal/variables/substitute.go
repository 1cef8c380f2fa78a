package variables

import (
	"fmt"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// Variable tag names.
const (
	TagGlobal   = "Vg"
	TagProduct  = "Vpd"
	TagPlatform = "Vpl"
)

// KeyAttr names the attribute holding the variable key.
const KeyAttr = "k"

// Substitutor replaces variable tags with their values.
type Substitutor struct {
	Globals   *Table
	Products  *Scoped
	Platforms *Scoped
}

// Apply replaces every <Vg k="KEY" />, <Vpd k="KEY" /> and <Vpl k="KEY" /> in text.
//
// Unknown keys leave the tag in place and report a warning. A product or platform tag
// whose selected scope is missing from its dictionary is fatal. Applying the result
// again changes nothing.
func (s *Substitutor) Apply(text, platform, product string, sink diag.Sink) (string, error) {
	if sink == nil {
		sink = diag.Discard
	}
	tags, issues := mdx.Tokenize(text, mdx.Options{Names: []string{TagGlobal, TagProduct, TagPlatform}})
	for _, is := range issues {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: is.String()})
	}

	var edits []markdown.Edit
	for _, t := range tags {
		if t.Closing {
			continue
		}
		key, ok := t.Attrs.Get(KeyAttr)
		if !ok || key == "" {
			sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: fmt.Sprintf("<%s> without %q attribute", t.Name, KeyAttr)})
			continue
		}

		var (
			value string
			found bool
		)
		switch t.Name {
		case TagGlobal:
			value, found = s.Globals.Get(key)
		case TagProduct:
			if !s.Products.HasScope(product) {
				return "", ferrors.UnknownScope("product", product).
					WithContext("key", key).
					Build()
			}
			value, found = s.Products.Lookup(product, key)
		case TagPlatform:
			if !s.Platforms.HasScope(platform) {
				return "", ferrors.UnknownScope("platform", platform).
					WithContext("key", key).
					Build()
			}
			value, found = s.Platforms.Lookup(platform, key)
		}
		if !found {
			sink.Warn(diag.Warning{
				Kind:    diag.KindUnresolvedReference,
				Message: fmt.Sprintf("unknown variable <%s k=%q />", t.Name, key),
			})
			continue
		}
		edits = append(edits, markdown.Edit{Start: t.Start, End: t.End, Replacement: value})
	}

	out, err := markdown.ApplyEdits(text, edits)
	if err != nil {
		return "", ferrors.InternalError("variable substitution produced invalid edits").WithCause(err).Build()
	}
	return out, nil
}
