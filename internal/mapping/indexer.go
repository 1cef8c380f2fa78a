package mapping

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdx2md/internal/convert"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatterops"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// urlKeys are the front matter keys searched, in order, for a document's URL.
var urlKeys = []string{"exported_from", "url", "permalink", "slug"}

// IndexOptions configures an index run.
type IndexOptions struct {
	SourceRoot   string // folder of exported Markdown
	OutputFolder string // receives `<id>__<name>.md` copies in a parallel tree
	JSONFile     string // path of the JSON mirror; empty disables it
	Commit       string
	Logger       *slog.Logger
	Now          func() time.Time
}

// Skipped is a Markdown file the indexer could not index.
type Skipped struct {
	Path   string
	Reason string
}

// Report summarizes an index run.
type Report struct {
	Processed int
	New       int
	Skipped   []Skipped
	Total     int
}

// Indexer assigns ids to exported documents and copies them under their indexed names.
type Indexer struct {
	store *Store
	opts  IndexOptions
}

// NewIndexer returns an Indexer writing to store.
func NewIndexer(store *Store, opts IndexOptions) *Indexer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Indexer{store: store, opts: opts}
}

// Run indexes every .md file below the source root. An empty store is first seeded from
// an existing JSON mirror so ids assigned by earlier tools survive.
func (ix *Indexer) Run(ctx context.Context) (*Report, error) {
	if _, err := os.Stat(ix.opts.SourceRoot); err != nil {
		return nil, ferrors.ValidationError("index source folder does not exist").WithCause(err).WithPath(ix.opts.SourceRoot).Build()
	}
	if err := ix.seedFromJSON(ctx); err != nil {
		return nil, err
	}

	outAbs, _ := filepath.Abs(ix.opts.OutputFolder)
	var files []string
	err := filepath.WalkDir(ix.opts.SourceRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(p); abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".md") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("failed to walk index source").WithCause(err).WithPath(ix.opts.SourceRoot).Build()
	}
	sort.Strings(files)

	report := &Report{}
	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		isNew, reason, err := ix.indexFile(ctx, p)
		if err != nil {
			return report, err
		}
		if reason != "" {
			report.Skipped = append(report.Skipped, Skipped{Path: p, Reason: reason})
			ix.opts.Logger.Warn("Skipping file", logfields.Path(p), slog.String("reason", reason))
			continue
		}
		report.Processed++
		if isNew {
			report.New++
		}
	}

	if ix.opts.JSONFile != "" {
		if err := ix.WriteJSON(ctx, ix.opts.JSONFile); err != nil {
			return report, err
		}
	}
	report.Total, err = ix.store.Count(ctx)
	if err != nil {
		return report, err
	}
	ix.opts.Logger.Info("Index updated",
		slog.Int("processed", report.Processed),
		slog.Int("new", report.New),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("total", report.Total))
	return report, nil
}

// indexFile returns a non-empty reason when the file is skipped.
func (ix *Indexer) indexFile(ctx context.Context, p string) (isNew bool, reason string, err error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return false, "unreadable: " + err.Error(), nil
	}
	fields, _, had, err := frontmatterops.Read(string(data))
	if err != nil || !had {
		return false, "no front matter", nil
	}
	url := ""
	for _, k := range urlKeys {
		if v, ok := fields[k].(string); ok && strings.TrimSpace(v) != "" {
			url = strings.TrimSpace(v)
			break
		}
	}
	if url == "" {
		return false, "no URL in front matter", nil
	}
	name := filepath.Base(p)
	title, _ := fields["title"].(string)
	if title == "" {
		title = name
	}

	rel, err := filepath.Rel(ix.opts.SourceRoot, p)
	if err != nil {
		return false, "", ferrors.FileSystemError("cannot relativize path").WithCause(err).WithPath(p).Build()
	}
	rel = filepath.ToSlash(rel)

	existing, found, err := ix.store.IDFor(ctx, rel)
	if err != nil {
		return false, "", err
	}
	id := existing
	if !found {
		if id, err = ix.store.NextID(ctx); err != nil {
			return false, "", err
		}
	}

	current := strconv.FormatInt(id, 10) + "__" + name
	outRel := filepath.ToSlash(filepath.Join(filepath.Dir(rel), current))
	fingerprint, _ := frontmatterops.FingerprintDocument(string(data))

	if err := convert.WriteAtomic(filepath.Join(ix.opts.OutputFolder, filepath.FromSlash(outRel)), data); err != nil {
		return false, "", ferrors.FileSystemError("failed to copy indexed file").WithCause(err).WithPath(outRel).Build()
	}
	if _, err := ix.store.Upsert(ctx, Entry{
		ID:               id,
		URL:              url,
		Title:            title,
		OriginalFilename: name,
		CurrentFilename:  current,
		OriginalPath:     rel,
		OutputPath:       outRel,
		Fingerprint:      fingerprint,
		Commit:           ix.opts.Commit,
		UpdatedAt:        ix.opts.Now(),
	}); err != nil {
		return false, "", err
	}
	return !found, "", nil
}

// WriteJSON writes the index as an object keyed by id.
func (ix *Indexer) WriteJSON(ctx context.Context, path string) error {
	entries, err := ix.store.All(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[strconv.FormatInt(e.ID, 10)] = e
	}
	data, err := json.MarshalIndent(byID, "", "  ")
	if err != nil {
		return ferrors.IndexError("failed to encode index").WithCause(err).Build()
	}
	if err := convert.WriteAtomic(path, append(data, '\n')); err != nil {
		return ferrors.FileSystemError("failed to write index").WithCause(err).WithPath(path).Build()
	}
	return nil
}

func (ix *Indexer) seedFromJSON(ctx context.Context) error {
	if ix.opts.JSONFile == "" {
		return nil
	}
	n, err := ix.store.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	data, err := os.ReadFile(ix.opts.JSONFile)
	if err != nil {
		return nil
	}
	var byID map[string]Entry
	if err := json.Unmarshal(data, &byID); err != nil {
		ix.opts.Logger.Warn("Ignoring unreadable index file", logfields.Path(ix.opts.JSONFile), logfields.Error(err))
		return nil
	}
	for key, e := range byID {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || e.OriginalPath == "" {
			continue
		}
		e.ID = id
		e.OriginalPath = filepath.ToSlash(e.OriginalPath)
		if _, err := ix.store.Upsert(ctx, e); err != nil {
			return err
		}
	}
	ix.opts.Logger.Info("Seeded index from JSON", logfields.Path(ix.opts.JSONFile), slog.Int("entries", len(byID)))
	return nil
}
