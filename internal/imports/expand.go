// Package imports inlines imported documentation fragments.
//
// A document may import fragments as components (`import Setup from './_setup.mdx'`
// followed by `<Setup />`) or as value bags (`import * as links from './links'` followed by
// `{links.sdk[props.platform]}`). Expansion is recursive: every spliced fragment has its
// own imports expanded, its wrappers resolved, and its variables substituted for the
// selection active on that branch.
package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/conditional"
	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatter"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
	"git.home.luguber.info/inful/mdx2md/internal/variables"
)

// DocsPrefix marks a path relative to the documentation root.
const DocsPrefix = "@docs"

// PlatformOverrideAttr on a fragment tag selects the platform for that inclusion only.
const PlatformOverrideAttr = "platform"

// sharedVariableDirs hold sources consumed by the variable resolver, never spliced.
var sharedVariableDirs = []string{"/shared/variables", "/data/variables"}

// Selection is the active platform and product.
type Selection struct {
	Platform string
	Product  string
}

// Expander expands imports relative to a documentation root.
type Expander struct {
	DocsRoot string
	// Vars substitutes variables in spliced fragments. Nil skips substitution.
	Vars *variables.Substitutor
	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// New creates an Expander.
func New(docsRoot string, vars *variables.Substitutor) *Expander {
	return &Expander{DocsRoot: docsRoot, Vars: vars}
}

// Expand reads the document at path and expands it.
func (e *Expander) Expand(path string, sel Selection, sink diag.Sink) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ferrors.FileSystemError("cannot resolve path").WithCause(err).WithPath(path).Build()
	}
	return e.expandFile(abs, sel, nil, sink)
}

// ExpandSource expands src as if it were the content of path. Front matter must already
// have been removed.
func (e *Expander) ExpandSource(src, path string, sel Selection, sink diag.Sink) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ferrors.FileSystemError("cannot resolve path").WithCause(err).WithPath(path).Build()
	}
	return e.expandText(src, abs, sel, []string{abs}, sink)
}

func (e *Expander) read(path string) ([]byte, error) {
	if e.ReadFile != nil {
		return e.ReadFile(path)
	}
	return os.ReadFile(path)
}

func (e *Expander) expandFile(path string, sel Selection, chain []string, sink diag.Sink) (string, error) {
	for _, p := range chain {
		if p == path {
			return "", ferrors.CyclicImport(append(append([]string(nil), chain...), path)).WithPath(path).Build()
		}
	}
	data, err := e.read(path)
	if err != nil {
		return "", ferrors.FragmentMissing(path).WithCause(err).WithPath(path).Build()
	}
	_, body, _, err := frontmatter.Split(string(data))
	if err != nil {
		body = string(data)
	}
	next := append(append([]string(nil), chain...), path)
	return e.expandText(body, path, sel, next, sink)
}

func (e *Expander) expandText(text, path string, sel Selection, chain []string, sink diag.Sink) (string, error) {
	scoped := diag.Scoped(sink, "imports", path)

	text = conditional.Resolve(text, conditional.Platform, sel.Platform, scoped)
	text = conditional.Resolve(text, conditional.Product, sel.Product, scoped)

	refs := FindRefs(text)
	text = StripTOC(StripImports(text, refs))

	for _, ref := range refs {
		if ref.Kind != RefNamespace {
			continue
		}
		bagPath := e.resolvePath(ref.Path, path)
		data, err := e.readAny(bagPath)
		if err != nil {
			return "", ferrors.FragmentMissing(bagPath).WithCause(err).WithPath(path).Build()
		}
		bag, err := ParseBag(string(data))
		if err != nil {
			return "", ferrors.ParseError("cannot parse namespace import " + ref.Path + ": " + err.Error()).
				WithCause(err).
				WithPath(bagPath).
				Build()
		}
		text = SubstituteNamespace(text, ref.Name, bag, sel.Platform, scoped)
	}

	for _, ref := range refs {
		if ref.Kind != RefTag {
			continue
		}
		fragPath := e.resolvePath(ref.Path, path)
		if isSharedVariables(fragPath) {
			continue
		}
		var err error
		text, err = e.spliceTag(text, ref.Name, fragPath, sel, chain, scoped)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

// spliceTag replaces every <name/> occurrence with the expanded fragment.
func (e *Expander) spliceTag(text, name, fragPath string, sel Selection, chain []string, sink diag.Sink) (string, error) {
	doc := mdx.Parse(text, mdx.Options{Names: []string{name}, SkipFences: true})
	for _, is := range doc.Issues {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: is.String()})
	}

	cache := map[Selection]string{}
	var failed error
	out := doc.Render(func(n *mdx.Node, _ func() string) string {
		if failed != nil {
			return ""
		}
		if !n.SelfClosing && strings.TrimSpace(n.Inner()) != "" {
			sink.Warn(diag.Warning{
				Kind:    diag.KindMalformedTag,
				Message: fmt.Sprintf("<%s> fragment tag has content; content discarded", name),
			})
		}
		branch := sel
		if p, ok := n.Attrs.Get(PlatformOverrideAttr); ok && p != "" {
			branch.Platform = p
		}
		if content, ok := cache[branch]; ok {
			return content
		}

		content, err := e.expandFile(fragPath, branch, chain, sink)
		if err != nil {
			failed = err
			return ""
		}
		content = conditional.Resolve(content, conditional.Platform, branch.Platform, sink)
		content = conditional.Resolve(content, conditional.Product, branch.Product, sink)
		if e.Vars != nil {
			content, err = e.Vars.Apply(content, branch.Platform, branch.Product, diag.Scoped(sink, "imports", fragPath))
			if err != nil {
				failed = ferrors.InStage(err, "imports", fragPath)
				return ""
			}
		}
		cache[branch] = content
		return content
	})
	if failed != nil {
		return "", failed
	}
	return out, nil
}

// resolvePath maps an import path to a file path.
func (e *Expander) resolvePath(ref, from string) string {
	switch {
	case strings.HasPrefix(ref, DocsPrefix+"/"):
		return filepath.Join(e.DocsRoot, filepath.FromSlash(strings.TrimPrefix(ref, DocsPrefix+"/")))
	case filepath.IsAbs(ref):
		return filepath.Clean(ref)
	default:
		return filepath.Join(filepath.Dir(from), filepath.FromSlash(ref))
	}
}

// readAny reads path, trying the usual source extensions when it has none.
func (e *Expander) readAny(path string) ([]byte, error) {
	data, err := e.read(path)
	if err == nil || filepath.Ext(path) != "" {
		return data, err
	}
	for _, ext := range []string{".js", ".mdx", ".md"} {
		if d, extErr := e.read(path + ext); extErr == nil {
			return d, nil
		}
	}
	return nil, err
}

func isSharedVariables(path string) bool {
	p := filepath.ToSlash(path)
	for _, dir := range sharedVariableDirs {
		if strings.Contains(p, dir+"/") || strings.HasSuffix(p, dir) {
			return true
		}
	}
	return false
}
