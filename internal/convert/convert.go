// Package convert turns one MDX document into published Markdown.
//
// A conversion runs a fixed sequence of named stages over a Document. The first fatal
// error stops the run and carries the name of the stage that produced it; recoverable
// problems are collected as warnings in the Result.
package convert

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/imports"
	"git.home.luguber.info/inful/mdx2md/internal/links"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
	"git.home.luguber.info/inful/mdx2md/internal/variables"
)

// Defaults used when Options leave them empty.
const (
	DefaultPlatform = "android"
	DefaultSiteBase = "https://docs.agora.io/en"
)

// Locations of the variable sources under the docs root.
const (
	GlobalVariablesPath   = "shared/variables/global.js"
	ProductVariablesPath  = "shared/variables/product.js"
	PlatformVariablesPath = "shared/variables/platform.js"
)

// Options configures a Converter.
type Options struct {
	DocsRoot        string
	SiteBase        string
	MarkdownBase    string
	OutputRoot      string
	AssetBaseURL    string
	DefaultPlatform string
	// HTMLVersionLink prefixes each document with a link to its published HTML page.
	HTMLVersionLink bool
	Now             func() time.Time
	Logger          *slog.Logger
}

// Request selects one document and its platform/product. Empty fields take defaults:
// the configured platform, the first path segment under the docs root as product, and
// the document path with a .md extension as output.
type Request struct {
	Path     string
	Platform string
	Product  string
	// OutputRel is the output path relative to the output root.
	OutputRel string
}

// Result is the outcome of a successful conversion.
type Result struct {
	Markdown   string
	Warnings   []diag.Warning
	Assets     []links.Asset
	OutputPath string
	// FrontMatter holds the source front matter merged with the export keys.
	FrontMatter map[string]any
}

// Converter converts documents of one docs tree. Variable tables are loaded once and
// shared read-only by sequential conversions.
type Converter struct {
	opts     Options
	vars     *variables.Substitutor
	expander *imports.Expander
	links    *links.Rewriter
	logger   *slog.Logger
}

// New loads the variable sources under opts.DocsRoot and returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.DocsRoot == "" {
		return nil, ferrors.ConfigError("docs root is required").Build()
	}
	root, err := filepath.Abs(opts.DocsRoot)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve docs root").WithCause(err).WithPath(opts.DocsRoot).Build()
	}
	opts.DocsRoot = root
	if opts.SiteBase == "" {
		opts.SiteBase = DefaultSiteBase
	}
	opts.SiteBase = strings.TrimRight(opts.SiteBase, "/")
	if opts.DefaultPlatform == "" {
		opts.DefaultPlatform = DefaultPlatform
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	globals, err := variables.LoadGlobals(filepath.Join(root, filepath.FromSlash(GlobalVariablesPath)))
	if err != nil {
		return nil, err
	}
	products, err := variables.LoadScoped("product", filepath.Join(root, filepath.FromSlash(ProductVariablesPath)))
	if err != nil {
		return nil, err
	}
	platforms, err := variables.LoadScoped("platform", filepath.Join(root, filepath.FromSlash(PlatformVariablesPath)))
	if err != nil {
		return nil, err
	}
	vars := &variables.Substitutor{Globals: globals, Products: products, Platforms: platforms}

	return &Converter{
		opts:     opts,
		vars:     vars,
		expander: imports.New(root, vars),
		links: links.New(links.Config{
			DocsRoot:     root,
			SiteBase:     opts.SiteBase,
			MarkdownBase: opts.MarkdownBase,
			OutputRoot:   opts.OutputRoot,
			AssetBaseURL: opts.AssetBaseURL,
			Globals:      globals,
		}),
		logger: opts.Logger,
	}, nil
}

// DocsRoot returns the absolute docs root.
func (c *Converter) DocsRoot() string { return c.opts.DocsRoot }

// Convert runs the pipeline for one document.
func (c *Converter) Convert(req Request) (*Result, error) {
	start := time.Now()
	doc, err := c.newDocument(req)
	if err != nil {
		return nil, err
	}
	collector := diag.NewCollector(c.logger)

	for _, st := range c.stages() {
		doc.sink = diag.Scoped(collector, st.name, doc.Path)
		if err := st.run(doc); err != nil {
			return nil, ferrors.InStage(err, st.name, doc.Path)
		}
	}

	c.logger.Debug("Converted document",
		logfields.Path(doc.RelPath),
		logfields.Platform(doc.Selection.Platform),
		logfields.Product(doc.Selection.Product),
		logfields.Warnings(collector.Count()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	return &Result{
		Markdown:    doc.Output,
		Warnings:    collector.Warnings(),
		Assets:      doc.Assets,
		OutputPath:  doc.OutputRel,
		FrontMatter: doc.FrontMatter,
	}, nil
}

func (c *Converter) newDocument(req Request) (*Document, error) {
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve document path").WithCause(err).WithPath(req.Path).Build()
	}
	rel, err := filepath.Rel(c.opts.DocsRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ferrors.ValidationError("document is outside the docs root").
			WithPath(abs).
			WithContext("docs_root", c.opts.DocsRoot).
			Build()
	}
	rel = filepath.ToSlash(rel)

	sel := imports.Selection{Platform: req.Platform, Product: req.Product}
	if sel.Platform == "" {
		sel.Platform = c.opts.DefaultPlatform
	}
	if sel.Product == "" {
		sel.Product = ProductOf(rel)
	}
	out := req.OutputRel
	if out == "" {
		out = strings.TrimSuffix(rel, path.Ext(rel)) + ".md"
	}
	return &Document{
		Path:      abs,
		RelPath:   rel,
		Selection: sel,
		OutputRel: filepath.ToSlash(out),
		sink:      diag.Discard,
	}, nil
}

// ProductOf returns the product a docs-relative path belongs to: its first segment.
func ProductOf(rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	first, _, found := strings.Cut(rel, "/")
	if !found {
		return ""
	}
	return first
}

// DocURL is the published page of a docs-relative path for a platform.
func DocURL(siteBase, rel, platform string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), path.Ext(rel))
	u := strings.TrimRight(siteBase, "/") + "/" + strings.TrimPrefix(rel, "/")
	if platform != "" {
		u += "?platform=" + platform
	}
	return u
}

// WriteFile converts the document and writes it below the output root. The file is
// written to a temporary name and renamed, so a failed conversion or write never leaves
// partial output behind.
func (c *Converter) WriteFile(req Request) (*Result, error) {
	if c.opts.OutputRoot == "" {
		return nil, ferrors.ConfigError("output root is required to write files").Build()
	}
	res, err := c.Convert(req)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(c.opts.OutputRoot, filepath.FromSlash(res.OutputPath))
	if err := WriteAtomic(target, []byte(res.Markdown)); err != nil {
		return nil, ferrors.FileSystemError("failed to write output").
			WithCause(err).
			WithPath(target).
			WithStage(StageWrite).
			Build()
	}
	return res, nil
}

// WriteAtomic writes data to path through a temporary file in the same directory.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
