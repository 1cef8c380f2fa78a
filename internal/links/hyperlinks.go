package links

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/components"
	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
)

var docExtensions = []string{".mdx", ".md"}

// Hyperlinks resolves `[text](href)` destinations to absolute site URLs.
//
// Anchors, mailto/tel links and links to other hosts are kept. Dot-relative links are
// resolved against docDir and expressed relative to the docs root with the document
// extension dropped; other relative links are taken as docs-root paths. Links on the site
// host are mapped to the Markdown URL scheme when a Markdown base is configured.
func (r *Rewriter) Hyperlinks(text, docDir string, sink diag.Sink) (string, error) {
	var edits []markdown.Edit
	for _, l := range markdown.FindInlineLinks(text, markdown.CodeRanges(text)) {
		if l.Image {
			continue
		}
		dest, changed := r.resolveLink(l.Dest, docDir, sink)
		if changed {
			edits = append(edits, markdown.Edit{Start: l.DestStart, End: l.DestEnd, Replacement: dest})
		}
	}
	if len(edits) == 0 {
		return text, nil
	}
	out, err := markdown.ApplyEdits(text, edits)
	if err != nil {
		return "", ferrors.InternalError("link rewrite produced overlapping edits").WithCause(err).Build()
	}
	return out, nil
}

func (r *Rewriter) resolveLink(href, docDir string, sink diag.Sink) (string, bool) {
	lower := strings.ToLower(href)
	switch {
	case strings.HasPrefix(href, "#"),
		strings.HasPrefix(lower, "mailto:"),
		strings.HasPrefix(lower, "tel:"):
		return href, false
	case isRemote(href):
		return r.siteLink(href)
	}

	p, query, fragment := splitRef(href)
	if p == "" {
		return href, false
	}

	var rel string
	if strings.HasPrefix(p, ".") {
		target := filepath.Join(docDir, filepath.FromSlash(p))
		if !docExists(target) {
			sink.Warn(diag.Warning{
				Kind:    diag.KindBrokenLink,
				Message: fmt.Sprintf("link target does not exist: %s", href),
			})
		}
		inside, ok := within(r.cfg.DocsRoot, target)
		if !ok {
			sink.Warn(diag.Warning{
				Kind:    diag.KindBrokenLink,
				Message: fmt.Sprintf("link leaves the docs root: %s", href),
			})
			return href, false
		}
		rel = stripDocExtension(inside)
	} else {
		rel = p
	}

	abs := components.AbsoluteURL(r.cfg.SiteBase, rel) + query + fragment
	if site, ok := r.siteLink(abs); ok {
		return site, true
	}
	return abs, abs != href
}

// siteLink maps a same-site URL onto the Markdown URL scheme.
func (r *Rewriter) siteLink(raw string) (string, bool) {
	if r.cfg.MarkdownBase == "" || r.siteHost == "" {
		return raw, false
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, r.siteHost) {
		return raw, false
	}
	return r.MarkdownURL(u), true
}

// MarkdownURL maps a site URL to its published Markdown file: the locale segment is
// dropped, a platform query becomes a `_<platform>` suffix and `.md` is appended.
func (r *Rewriter) MarkdownURL(u *url.URL) string {
	p := strings.Trim(u.Path, "/")
	if r.locale != "" {
		if p == r.locale {
			p = ""
		} else {
			p = strings.TrimPrefix(p, r.locale+"/")
		}
	}
	if p == "" {
		return r.cfg.MarkdownBase + "/"
	}
	p = stripDocExtension(p)
	if platform := u.Query().Get("platform"); platform != "" {
		p += "_" + platform
	}
	out := r.cfg.MarkdownBase + "/" + p + ".md"
	if u.Fragment != "" {
		out += "#" + u.Fragment
	}
	return out
}

func stripDocExtension(p string) string {
	ext := path.Ext(p)
	for _, e := range docExtensions {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

func docExists(target string) bool {
	if exists(target) {
		return true
	}
	for _, e := range docExtensions {
		if exists(target + e) {
			return true
		}
	}
	return false
}
