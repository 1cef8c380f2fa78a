// Package conditional resolves platform and product wrapper blocks.
package conditional

import (
	"slices"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// Kind selects the wrapper family.
type Kind int

const (
	Platform Kind = iota
	Product
)

// DenyAttr names the deny-list attribute shared by both wrappers.
const DenyAttr = "notAllowed"

// Tag returns the wrapper tag name.
func (k Kind) Tag() string {
	if k == Product {
		return "ProductWrapper"
	}
	return "PlatformWrapper"
}

// AllowAttr returns the allow-list attribute name.
func (k Kind) AllowAttr() string {
	if k == Product {
		return "product"
	}
	return "platform"
}

func (k Kind) String() string {
	return k.AllowAttr()
}

// Allowed decides whether a wrapper with attrs keeps its content for selector.
// The allow list wins over the deny list; a wrapper with neither targets nothing.
func Allowed(attrs mdx.Attrs, kind Kind, selector string) bool {
	if v, ok := attrs.Get(kind.AllowAttr()); ok {
		return slices.Contains(mdx.List(v), selector)
	}
	if v, ok := attrs.Get(DenyAttr); ok {
		return !slices.Contains(mdx.List(v), selector)
	}
	return false
}

// Resolve replaces every wrapper of kind in text: allowed wrappers give way to their
// content (with nested wrappers resolved), the others are removed with their content.
// Structural problems are reported to sink and degrade to stripping the stray tag.
func Resolve(text string, kind Kind, selector string, sink diag.Sink) string {
	return ResolveWith(text, kind, selector, sink, mdx.DefaultMaxElements)
}

// ResolveWith is Resolve with an explicit element cap.
func ResolveWith(text string, kind Kind, selector string, sink diag.Sink, maxElements int) string {
	if sink == nil {
		sink = diag.Discard
	}
	out, issues := mdx.Rewrite(text, mdx.Options{
		Names:       []string{kind.Tag()},
		SkipFences:  true,
		MaxElements: maxElements,
	}, func(n *mdx.Node, inner func() string) string {
		if !Allowed(n.Attrs, kind, selector) {
			return ""
		}
		return inner()
	})
	for _, is := range issues {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: is.String()})
	}
	return out
}
