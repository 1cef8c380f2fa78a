package imports

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/jsobj"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// RefKind distinguishes the two fragment reference forms.
type RefKind int

const (
	// RefOther is an import that carries no content (components, styles, code).
	RefOther RefKind = iota
	// RefTag is `import Tag from './fragment.mdx'`.
	RefTag
	// RefNamespace is `import * as alias from './values'`.
	RefNamespace
)

// Ref is one import statement.
type Ref struct {
	Kind  RefKind
	Name  string // tag name or namespace alias
	Path  string // as written
	Start int
	End   int
}

var (
	importRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:\*[ \t]+as[ \t]+([\w$]+)|([\w$]+)(?:[ \t]*,[ \t]*\{[^}]*\})?|\{[^}]*\})[ \t]+from[ \t]+['"]([^'"\n]+)['"][ \t]*;?[ \t]*(?:\r?\n)*`)
	sideRe   = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+['"][^'"\n]+['"][ \t]*;?[ \t]*(?:\r?\n)*`)
	tocRe    = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+const[ \t]+toc[ \t]*=[ \t]*`)
)

// rawCode names the components whose body is a code sample.
var rawCode = []string{"CodeBlock", "ExampleTab"}

// codeRanges covers fenced code and the bodies of code sample components.
func codeRanges(src string) markdown.Ranges {
	doc := mdx.Parse(src, mdx.Options{Names: rawCode, Raw: rawCode, SkipFences: true})
	var bodies markdown.Ranges
	for _, n := range doc.Root.Elements("") {
		bodies = append(bodies, markdown.Range{Start: n.InnerStart, End: n.InnerEnd})
	}
	return markdown.Merge(markdown.Fences(src), bodies)
}

// FindRefs returns the import statements of src outside code, in source order.
func FindRefs(src string) []Ref {
	fences := codeRanges(src)
	var refs []Ref
	for _, m := range importRe.FindAllStringSubmatchIndex(src, -1) {
		if fences.Contains(m[0]) {
			continue
		}
		ref := Ref{Path: src[m[6]:m[7]], Start: m[0], End: m[1]}
		switch {
		case m[2] >= 0:
			ref.Kind = RefNamespace
			ref.Name = src[m[2]:m[3]]
		case m[4] >= 0 && isFragmentPath(ref.Path):
			ref.Kind = RefTag
			ref.Name = src[m[4]:m[5]]
		}
		refs = append(refs, ref)
	}
	for _, m := range sideRe.FindAllStringIndex(src, -1) {
		if fences.Contains(m[0]) {
			continue
		}
		refs = append(refs, Ref{Kind: RefOther, Start: m[0], End: m[1]})
	}
	sortRefs(refs)
	return refs
}

func sortRefs(refs []Ref) {
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && refs[j].Start < refs[j-1].Start; j-- {
			refs[j], refs[j-1] = refs[j-1], refs[j]
		}
	}
}

func isFragmentPath(p string) bool {
	return strings.HasSuffix(p, ".mdx") || strings.HasSuffix(p, ".md")
}

// StripImports removes the given statements from src.
func StripImports(src string, refs []Ref) string {
	edits := make([]markdown.Edit, 0, len(refs))
	for _, r := range refs {
		edits = append(edits, markdown.Edit{Start: r.Start, End: r.End})
	}
	out, err := markdown.ApplyEdits(src, edits)
	if err != nil {
		return src
	}
	return out
}

// StripTOC removes `export const toc = [...]` declarations outside code.
func StripTOC(src string) string {
	fences := codeRanges(src)
	var edits []markdown.Edit
	for _, m := range tocRe.FindAllStringIndex(src, -1) {
		if fences.Contains(m[0]) {
			continue
		}
		_, end, err := jsobj.ValueAt(src, m[1], jsobj.Options{})
		if err != nil {
			continue
		}
		end = skipStatementEnd(src, end)
		edits = append(edits, markdown.Edit{Start: m[0], End: end})
	}
	out, err := markdown.ApplyEdits(src, edits)
	if err != nil {
		return src
	}
	return out
}

func skipStatementEnd(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i < len(src) && src[i] == ';' {
		i++
	}
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i < len(src) && src[i] == '\r' {
		i++
	}
	if i < len(src) && src[i] == '\n' {
		i++
	}
	return i
}
