package links

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/markdown"
)

// Images copies local images referenced by `![alt](src)` into the output tree and points
// the references at the asset base URL. Remote images are left alone. A missing file is
// reported and its reference kept unchanged.
func (r *Rewriter) Images(text, docDir string, sink diag.Sink) (string, []Asset, error) {
	var (
		edits  []markdown.Edit
		assets []Asset
	)
	for _, l := range markdown.FindInlineLinks(text, markdown.CodeRanges(text)) {
		if !l.Image || isRemote(l.Dest) {
			continue
		}
		source, ok := r.imageSource(l.Dest, docDir)
		if !ok || !exists(source) {
			sink.Warn(diag.Warning{
				Kind:    diag.KindAssetMissing,
				Message: fmt.Sprintf("image not found: %s", l.Dest),
			})
			continue
		}
		asset, err := r.copyAsset(source)
		if err != nil {
			return "", nil, err
		}
		assets = append(assets, asset)
		edits = append(edits, markdown.Edit{Start: l.DestStart, End: l.DestEnd, Replacement: asset.URL})
	}
	if len(edits) == 0 {
		return text, assets, nil
	}
	out, err := markdown.ApplyEdits(text, edits)
	if err != nil {
		return "", nil, ferrors.InternalError("image rewrite produced overlapping edits").WithCause(err).Build()
	}
	return out, assets, nil
}

// imageSource maps an image reference to a file: `/x` lives under <docs>/assets,
// `@docs/x` under the docs root, anything else relative to the document.
func (r *Rewriter) imageSource(ref, docDir string) (string, bool) {
	p, _, _ := splitRef(ref)
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	switch {
	case p == "":
		return "", false
	case strings.HasPrefix(p, "@docs/"):
		return filepath.Join(r.cfg.DocsRoot, filepath.FromSlash(strings.TrimPrefix(p, "@docs/"))), true
	case strings.HasPrefix(p, "/"):
		return filepath.Join(r.cfg.DocsRoot, "assets", filepath.FromSlash(strings.TrimPrefix(p, "/"))), true
	default:
		return filepath.Join(docDir, filepath.FromSlash(p)), true
	}
}

// mirrored is the asset's path inside the output assets directory.
func (r *Rewriter) mirrored(source string) string {
	if rel, ok := within(filepath.Join(r.cfg.DocsRoot, "assets"), source); ok {
		return rel
	}
	if rel, ok := within(r.cfg.DocsRoot, source); ok {
		return rel
	}
	return filepath.Base(source)
}

func (r *Rewriter) copyAsset(source string) (Asset, error) {
	rel := r.mirrored(source)
	asset := Asset{Source: source, URL: r.cfg.AssetBaseURL + "/" + rel}
	if r.cfg.OutputRoot == "" {
		return asset, nil
	}
	asset.Target = filepath.Join(r.cfg.OutputRoot, "assets", filepath.FromSlash(rel))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.copied[asset.Target] {
		return asset, nil
	}
	if err := copyFile(source, asset.Target); err != nil {
		return Asset{}, ferrors.FileSystemError("failed to copy image").
			WithCause(err).
			WithPath(source).
			WithContext("target", asset.Target).
			Build()
	}
	r.copied[asset.Target] = true
	return asset, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src) // #nosec G304 -- path resolved under the docs tree
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- output tree path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
