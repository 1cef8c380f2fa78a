package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdx2md/internal/config"
	"git.home.luguber.info/inful/mdx2md/internal/convert"
	"git.home.luguber.info/inful/mdx2md/internal/events"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
	"git.home.luguber.info/inful/mdx2md/internal/metrics"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path (defaults apply when it does not exist)" default:"mdx2md.yaml"`
	DocsRoot string           `name:"docs-root" help:"Docs root directory (overrides docs_root)" type:"path"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" help:"Convert one MDX document to Markdown"`
	Export  ExportCmd  `cmd:"" help:"Export every document of the docs tree, one file per platform"`
	Index   IndexCmd   `cmd:"" help:"Assign stable ids to exported Markdown and write the file-mapping index"`
	Watch   WatchCmd   `cmd:"" help:"Re-export whenever the docs tree changes"`
	Daemon  DaemonCmd  `cmd:"" help:"Run scheduled exports (and optionally watch the docs tree)"`
	Info    VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; set up default logging until the config is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration, applies global flag overrides and switches logging
// to the configured level and format.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, err
	}
	if root.DocsRoot != "" {
		cfg.DocsRoot = root.DocsRoot
	}

	level := cfg.Logging.Level.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func newConverter(g *Global, cfg *config.Config, outputRoot string) (*convert.Converter, error) {
	return convert.New(convert.Options{
		DocsRoot:        cfg.DocsRoot,
		SiteBase:        cfg.Site.BaseURL,
		MarkdownBase:    cfg.Site.MarkdownBaseURL,
		OutputRoot:      outputRoot,
		AssetBaseURL:    cfg.Output.AssetBaseURL,
		DefaultPlatform: cfg.Defaults.Platform,
		HTMLVersionLink: cfg.Output.HTMLVersionLink,
		Logger:          g.Logger,
	})
}

// newRecorder returns a Prometheus recorder when a textfile is configured.
func newRecorder(cfg *config.Config) (metrics.Recorder, func()) {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	rec := metrics.NewPrometheusRecorder(nil)
	return rec, func() {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
}

// newPublisher connects to NATS when events are configured. A connection failure is
// logged and exports continue without events.
func newPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if cfg.Events.URL == "" {
		return events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(ctx, events.NATSConfig{
		URL:     cfg.Events.URL,
		Subject: cfg.Events.Subject,
		Stream:  cfg.Events.Stream,
		Timeout: cfg.Events.Timeout.Std(),
	})
	if err != nil {
		slog.Warn("Export events disabled", logfields.Error(err))
		return events.NoopPublisher{}
	}
	return pub
}

// resolve makes p absolute relative to base unless it already is.
func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
