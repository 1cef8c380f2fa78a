package convert

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdx2md/internal/components"
	"git.home.luguber.info/inful/mdx2md/internal/conditional"
	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatter"
	"git.home.luguber.info/inful/mdx2md/internal/imports"
	"git.home.luguber.info/inful/mdx2md/internal/links"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
)

// Stage names, in pipeline order.
const (
	StageRead            = "read"
	StageFrontMatter     = "frontmatter"
	StageImports         = "imports"
	StageVariables       = "variables"
	StageConditionals    = "conditionals"
	StageCleanup         = "cleanup"
	StageTabs            = "tabs"
	StageCodeBlocks      = "codeblocks"
	StageDetails         = "details"
	StageAdmonitions     = "admonitions"
	StageAPILayout       = "api_layout"
	StageProductOverview = "product_overview"
	StageLinkTags        = "link_tags"
	StageImages          = "images"
	StageHyperlinks      = "hyperlinks"
	StageAssemble        = "assemble"
	StageWrite           = "write"
)

// Document is the working state of one conversion.
type Document struct {
	Path      string // absolute source path
	RelPath   string // slash path relative to the docs root
	OutputRel string
	Selection imports.Selection

	Raw         string
	FrontMatter map[string]any
	Body        string
	Assets      []links.Asset
	Output      string

	sink diag.Sink
}

type stage struct {
	name string
	run  func(*Document) error
}

// text lifts a body transform into a stage.
func text(name string, fn func(string, diag.Sink) string) stage {
	return stage{name: name, run: func(d *Document) error {
		d.Body = fn(d.Body, d.sink)
		return nil
	}}
}

func (c *Converter) stages() []stage {
	return []stage{
		{StageRead, c.read},
		{StageFrontMatter, c.parseFrontMatter},
		{StageImports, c.expandImports},
		{StageVariables, c.substituteVariables},
		{StageConditionals, c.resolveConditionals},
		{StageCleanup, cleanup},
		text(StageTabs, components.Tabs),
		text(StageCodeBlocks, components.CodeBlocks),
		text(StageDetails, components.Details),
		text(StageAdmonitions, components.Admonitions),
		text(StageAPILayout, components.APILayout),
		text(StageProductOverview, func(s string, sink diag.Sink) string {
			return components.ProductOverview(s, c.opts.SiteBase, sink)
		}),
		text(StageLinkTags, c.links.LinkTags),
		{StageImages, c.copyImages},
		{StageHyperlinks, c.rewriteHyperlinks},
		{StageAssemble, c.assemble},
	}
}

func (c *Converter) read(d *Document) error {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return ferrors.FragmentMissing(d.Path).WithCause(err).WithPath(d.Path).Build()
	}
	d.Raw = string(data)
	return nil
}

func (c *Converter) parseFrontMatter(d *Document) error {
	raw, body, had, err := frontmatter.Split(d.Raw)
	if err != nil {
		return ferrors.ParseError("malformed front matter").WithCause(err).WithPath(d.Path).Build()
	}
	d.Body = body
	d.FrontMatter = map[string]any{}
	if !had {
		return nil
	}
	fields, err := frontmatter.ParseYAML(raw)
	if err != nil {
		return ferrors.ParseError("invalid front matter YAML").WithCause(err).WithPath(d.Path).Build()
	}
	d.FrontMatter = fields
	return nil
}

func (c *Converter) expandImports(d *Document) error {
	out, err := c.expander.ExpandSource(d.Body, d.Path, d.Selection, d.sink)
	if err != nil {
		return err
	}
	d.Body = out
	return nil
}

func (c *Converter) substituteVariables(d *Document) error {
	out, err := c.vars.Apply(d.Body, d.Selection.Platform, d.Selection.Product, d.sink)
	if err != nil {
		return err
	}
	d.Body = out
	return nil
}

// resolveConditionals catches wrappers that only appeared after substitution.
func (c *Converter) resolveConditionals(d *Document) error {
	d.Body = conditional.Resolve(d.Body, conditional.Platform, d.Selection.Platform, d.sink)
	d.Body = conditional.Resolve(d.Body, conditional.Product, d.Selection.Product, d.sink)
	return nil
}

func cleanup(d *Document) error {
	d.Body = markdown.CollapseBlankLines(imports.StripTOC(d.Body))
	return nil
}

func (c *Converter) copyImages(d *Document) error {
	out, assets, err := c.links.Images(d.Body, filepath.Dir(d.Path), d.sink)
	if err != nil {
		return err
	}
	d.Body = out
	d.Assets = assets
	return nil
}

func (c *Converter) rewriteHyperlinks(d *Document) error {
	out, err := c.links.Hyperlinks(d.Body, filepath.Dir(d.Path), d.sink)
	if err != nil {
		return err
	}
	d.Body = out
	return nil
}

func (c *Converter) assemble(d *Document) error {
	fields := make(map[string]any, len(d.FrontMatter)+4)
	for k, v := range d.FrontMatter {
		fields[k] = v
	}
	exportedFrom := DocURL(c.opts.SiteBase, d.RelPath, d.Selection.Platform)
	fields[frontmatter.KeyPlatform] = d.Selection.Platform
	fields[frontmatter.KeyExportedFrom] = exportedFrom
	fields[frontmatter.KeyExportedOn] = c.opts.Now().UTC().Format(time.RFC3339)
	fields[frontmatter.KeyExportedFile] = d.OutputRel
	d.FrontMatter = fields

	serialized, err := frontmatter.SerializeOrdered(fields, frontmatter.ExportOrder)
	if err != nil {
		return ferrors.ExportError("cannot serialize front matter").WithCause(err).WithPath(d.Path).Build()
	}

	body := strings.TrimLeft(d.Body, "\r\n")
	if title, ok := fields[frontmatter.KeyTitle].(string); ok && strings.TrimSpace(title) != "" && !hasLeadingH1(body) {
		body = "# " + strings.TrimSpace(title) + "\n\n" + body
	}
	if c.opts.HTMLVersionLink {
		body = "[HTML Version](" + exportedFrom + ")\n\n" + body
	}
	body = strings.TrimRight(body, "\n") + "\n"
	d.Output = frontmatter.Join(serialized, body)
	return nil
}

// hasLeadingH1 reports whether the first non-blank line is an ATX level-one heading.
func hasLeadingH1(body string) bool {
	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return trimmed == "#" || strings.HasPrefix(trimmed, "# ")
	}
	return false
}
