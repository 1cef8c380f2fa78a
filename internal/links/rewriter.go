// Package links rewrites link tags, images and hyperlinks in assembled Markdown.
//
// Images are copied next to the exported documents and pointed at the asset base URL.
// Hyperlinks are resolved against the documentation root and made absolute on the site
// base URL, or mapped onto the published Markdown tree when a Markdown base is set.
// Nothing inside fenced code or inline code spans is touched.
package links

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/variables"
)

// DefaultAssetBaseURL is used when Config.AssetBaseURL is empty.
const DefaultAssetBaseURL = "/assets"

// Config holds the roots and URLs a Rewriter resolves against.
type Config struct {
	DocsRoot string
	// SiteBase is the published site root including the locale, e.g. https://docs.agora.io/en.
	SiteBase string
	// MarkdownBase enables the Markdown URL scheme for same-site links when set.
	MarkdownBase string
	// OutputRoot receives copied assets under assets/. Empty disables copying.
	OutputRoot   string
	AssetBaseURL string
	Globals      *variables.Table
}

// Asset is an image copied into the output tree.
type Asset struct {
	Source string
	Target string
	URL    string
}

// Rewriter rewrites links for one documentation tree. It is safe for sequential reuse
// across documents; copies are remembered so a shared image is written once.
type Rewriter struct {
	cfg      Config
	siteHost string
	locale   string

	mu     sync.Mutex
	copied map[string]bool
}

// New creates a Rewriter.
func New(cfg Config) *Rewriter {
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = DefaultAssetBaseURL
	}
	cfg.SiteBase = strings.TrimRight(cfg.SiteBase, "/")
	cfg.MarkdownBase = strings.TrimRight(cfg.MarkdownBase, "/")
	cfg.AssetBaseURL = strings.TrimRight(cfg.AssetBaseURL, "/")

	r := &Rewriter{cfg: cfg, copied: make(map[string]bool)}
	if u, err := url.Parse(cfg.SiteBase); err == nil {
		r.siteHost = u.Host
		r.locale = lastSegment(u.Path)
	}
	return r
}

// Rewrite runs link tags, images and hyperlinks over text, in that order. docDir is the
// directory of the source document.
func (r *Rewriter) Rewrite(text, docDir string, sink diag.Sink) (string, []Asset, error) {
	text = r.LinkTags(text, diag.Scoped(sink, "link_tags", ""))
	text, assets, err := r.Images(text, docDir, diag.Scoped(sink, "images", ""))
	if err != nil {
		return "", nil, err
	}
	text, err = r.Hyperlinks(text, docDir, diag.Scoped(sink, "hyperlinks", ""))
	if err != nil {
		return "", nil, err
	}
	return text, assets, nil
}

// splitRef separates a reference into path, query (with '?') and fragment (with '#').
func splitRef(ref string) (path, query, fragment string) {
	path = ref
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path, fragment = path[:i], path[i:]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	return path, query, fragment
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:")
}

// within reports the slash path of target relative to root, or false when target lies
// outside root.
func within(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func lastSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
