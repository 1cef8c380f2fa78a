package export

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/convert"
	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatter"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatterops"
)

// Job is one (document, platform) conversion of a run.
type Job struct {
	Source    string // absolute .mdx path
	Rel       string // slash path relative to the docs root
	Product   string
	Platform  string // empty means the converter's default platform
	OutputRel string
}

// Skip records a document the planner left out.
type Skip struct {
	Rel    string
	Reason string
}

// Plan walks the start folder and expands every document into its jobs:
// one per published platform of its product (`<name>_<platform>.md`), or a single
// `<name>.md` when the front matter sets `platform_selector: false`. Platforms listed in
// `excluded_platforms` are dropped.
func Plan(docsRoot, startFolder string, skipFolders []string, products Products, sink diag.Sink) ([]Job, []Skip, error) {
	start := filepath.Join(docsRoot, filepath.FromSlash(startFolder))
	info, err := os.Stat(start)
	if err != nil || !info.IsDir() {
		return nil, nil, ferrors.ValidationError("start folder does not exist").WithPath(start).Build()
	}

	var (
		jobs  []Job
		skips []Skip
	)
	err = filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(docsRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p != start && slices.Contains(skipFolders, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".mdx") || strings.HasPrefix(d.Name(), "_") {
			return nil
		}
		if inSkippedFolder(rel, skipFolders) {
			return nil
		}

		product := convert.ProductOf(rel)
		platforms, ok := products[product]
		if !ok {
			skips = append(skips, Skip{Rel: rel, Reason: "no product mapping for " + product})
			return nil
		}

		selector, excluded := selection(p, rel, sink)
		base := strings.TrimSuffix(rel, path.Ext(rel))
		if !selector {
			jobs = append(jobs, Job{Source: p, Rel: rel, Product: product, OutputRel: base + ".md"})
			return nil
		}
		for _, platform := range platforms {
			if slices.Contains(excluded, platform) {
				continue
			}
			jobs = append(jobs, Job{
				Source:    p,
				Rel:       rel,
				Product:   product,
				Platform:  platform,
				OutputRel: base + "_" + platform + ".md",
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, ferrors.FileSystemError("failed to walk docs").WithCause(err).WithPath(start).Build()
	}
	return jobs, skips, nil
}

// inSkippedFolder catches skip folders above the start folder.
func inSkippedFolder(rel string, skipFolders []string) bool {
	parts := strings.Split(path.Dir(rel), "/")
	for _, part := range parts {
		if slices.Contains(skipFolders, part) {
			return true
		}
	}
	return false
}

// selection reads platform_selector (default true) and excluded_platforms. Unreadable
// front matter falls back to the defaults; the conversion itself reports the problem.
func selection(p, rel string, sink diag.Sink) (selector bool, excluded []string) {
	selector = true
	data, err := os.ReadFile(p)
	if err != nil {
		return selector, nil
	}
	fields, _, _, err := frontmatterops.Read(string(data))
	if err != nil {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Path: rel, Message: "unreadable front matter: " + err.Error()})
		return selector, nil
	}
	if v, ok := fields[frontmatter.KeyPlatformSelector].(bool); ok {
		selector = v
	}
	switch v := fields[frontmatter.KeyExcludedPlatforms].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				excluded = append(excluded, s)
			}
		}
	case string:
		excluded = append(excluded, v)
	}
	return selector, excluded
}
