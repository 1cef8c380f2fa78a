// Package export converts a docs tree in bulk.
//
// A run plans one job per (document, platform), converts each job in isolation and writes
// only documents whose content fingerprint changed. A failing job is recorded in the
// Summary and never stops the run.
package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdx2md/internal/convert"
	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/events"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatter"
	"git.home.luguber.info/inful/mdx2md/internal/frontmatterops"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
	"git.home.luguber.info/inful/mdx2md/internal/metrics"
)

// DefaultProductsFile is the product catalogue, relative to the directory holding the
// docs root.
const DefaultProductsFile = "data/v2/products.js"

// Converter converts one document.
type Converter interface {
	Convert(req convert.Request) (*convert.Result, error)
}

// Options configures an Exporter.
type Options struct {
	DocsRoot    string
	OutputRoot  string
	StartFolder string
	// ProductsFile is absolute or relative to the parent of DocsRoot.
	ProductsFile  string
	SkipFolders   []string
	SkipUnchanged bool
	// Commit is attached to run events when known.
	Commit string

	Recorder  metrics.Recorder
	Publisher events.Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// Exporter runs bulk exports.
type Exporter struct {
	opts Options
	conv Converter
}

// New returns an Exporter using conv for every job.
func New(conv Converter, opts Options) (*Exporter, error) {
	if opts.DocsRoot == "" || opts.OutputRoot == "" {
		return nil, ferrors.ConfigError("docs root and output root are required").Build()
	}
	if opts.ProductsFile == "" {
		opts.ProductsFile = DefaultProductsFile
	}
	if !filepath.IsAbs(opts.ProductsFile) {
		opts.ProductsFile = filepath.Join(filepath.Dir(filepath.Clean(opts.DocsRoot)), filepath.FromSlash(opts.ProductsFile))
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{opts: opts, conv: conv}, nil
}

// Run exports every planned job. The returned error is non-nil only when the run could
// not start (missing catalogue, missing start folder); per-job failures are in the Summary.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	s := &Summary{
		RunID:    uuid.NewString(),
		Commit:   e.opts.Commit,
		Start:    e.opts.Now(),
		Warnings: map[string]int{},
	}
	log := e.opts.Logger.With(logfields.RunID(s.RunID))

	planSink := diag.NewCollector(log)
	products, err := LoadProducts(e.opts.ProductsFile, planSink)
	if err != nil {
		return nil, err
	}
	jobs, skips, err := Plan(e.opts.DocsRoot, e.opts.StartFolder, e.opts.SkipFolders, products, planSink)
	if err != nil {
		return nil, err
	}
	s.Skipped = skips
	for kind, n := range planSink.CountByKind() {
		s.Warnings[string(kind)] += n
	}
	for _, sk := range skips {
		log.Warn("Skipping document", logfields.Path(sk.Rel), slog.String("reason", sk.Reason))
	}
	log.Info("Export started", slog.Int("jobs", len(jobs)), slog.Int("products", len(products)))

	for _, job := range jobs {
		if ctx.Err() != nil {
			s.Canceled = true
			break
		}
		e.runJob(ctx, log, job, s)
	}

	s.End = e.opts.Now()
	e.opts.Recorder.ObserveExportDuration(s.Duration())
	e.opts.Recorder.IncExportOutcome(s.Outcome())
	e.publishRun(ctx, log, s)

	log.Info("Export finished",
		slog.Int("converted", s.Converted),
		slog.Int("unchanged", s.Unchanged),
		slog.Int("failed", s.Failed),
		logfields.Warnings(s.WarningCount()),
		slog.String("outcome", string(s.Outcome())))
	return s, nil
}

func (e *Exporter) runJob(ctx context.Context, log *slog.Logger, job Job, s *Summary) {
	start := time.Now()
	res, err := e.conv.Convert(convert.Request{
		Path:      job.Source,
		Platform:  job.Platform,
		Product:   job.Product,
		OutputRel: job.OutputRel,
	})
	e.opts.Recorder.ObserveDocumentDuration(job.Platform, time.Since(start))
	if err != nil {
		e.fail(log, job, err, s)
		return
	}

	for _, w := range res.Warnings {
		s.Warnings[string(w.Kind)]++
		e.opts.Recorder.AddWarnings(string(w.Kind), 1)
	}
	e.opts.Recorder.AddAssetsCopied(len(res.Assets))

	fingerprint, err := frontmatterops.FingerprintDocument(res.Markdown)
	if err != nil {
		e.fail(log, job, ferrors.ExportError("cannot fingerprint output").WithCause(err).WithPath(job.Source).Build(), s)
		return
	}

	target := filepath.Join(e.opts.OutputRoot, filepath.FromSlash(res.OutputPath))
	out := Output{
		Source:      job.Rel,
		OutputRel:   res.OutputPath,
		Platform:    platformOf(job, res),
		Product:     job.Product,
		Fingerprint: fingerprint,
	}
	if title, ok := res.FrontMatter[frontmatter.KeyTitle].(string); ok {
		out.Title = title
	}

	if e.opts.SkipUnchanged && existingFingerprint(target) == fingerprint {
		s.Unchanged++
		s.Outputs = append(s.Outputs, out)
		e.opts.Recorder.IncDocumentResult(metrics.ResultUnchanged)
		log.Debug("Output unchanged", logfields.Output(res.OutputPath))
		return
	}

	if err := convert.WriteAtomic(target, []byte(res.Markdown)); err != nil {
		e.fail(log, job, ferrors.FileSystemError("failed to write output").
			WithCause(err).
			WithPath(target).
			WithStage(convert.StageWrite).
			Build(), s)
		return
	}
	out.Changed = true
	s.Converted++
	s.Outputs = append(s.Outputs, out)
	e.opts.Recorder.IncDocumentResult(metrics.ResultConverted)
	log.Info("Exported document", logfields.Path(job.Rel), logfields.Output(res.OutputPath), logfields.Warnings(len(res.Warnings)))

	if err := e.opts.Publisher.PublishDocument(ctx, events.DocumentEvent{
		RunID:       s.RunID,
		Source:      out.Source,
		Output:      out.OutputRel,
		Platform:    out.Platform,
		Product:     out.Product,
		Fingerprint: fingerprint,
		Warnings:    len(res.Warnings),
		Timestamp:   e.opts.Now().UTC(),
	}); err != nil {
		log.Warn("Failed to publish document event", logfields.Output(out.OutputRel), logfields.Error(err))
	}
}

func (e *Exporter) fail(log *slog.Logger, job Job, err error, s *Summary) {
	f := Failure{Source: job.Rel, Platform: job.Platform, Message: err.Error()}
	if ce, ok := ferrors.AsClassified(err); ok {
		f.Stage = ce.Stage()
	}
	s.Failed++
	s.Failures = append(s.Failures, f)
	e.opts.Recorder.IncDocumentResult(metrics.ResultFailed)
	log.Error("Export failed", logfields.Path(job.Rel), logfields.Platform(job.Platform), logfields.Stage(f.Stage), logfields.Error(err))
}

func (e *Exporter) publishRun(ctx context.Context, log *slog.Logger, s *Summary) {
	err := e.opts.Publisher.PublishRun(context.WithoutCancel(ctx), events.RunEvent{
		RunID:      s.RunID,
		Commit:     s.Commit,
		Converted:  s.Converted,
		Unchanged:  s.Unchanged,
		Failed:     s.Failed,
		Warnings:   s.WarningCount(),
		Duration:   s.Duration(),
		FinishedAt: s.End.UTC(),
	})
	if err != nil {
		log.Warn("Failed to publish run event", logfields.Error(err))
	}
}

// existingFingerprint fingerprints the file at path, or returns "" when it cannot.
func existingFingerprint(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	fp, err := frontmatterops.FingerprintDocument(string(data))
	if err != nil {
		return ""
	}
	return fp
}

func platformOf(job Job, res *convert.Result) string {
	if job.Platform != "" {
		return job.Platform
	}
	p, _ := res.FrontMatter[frontmatter.KeyPlatform].(string)
	return p
}
