package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"git.home.luguber.info/inful/mdx2md/internal/config"
	"git.home.luguber.info/inful/mdx2md/internal/events"
	"git.home.luguber.info/inful/mdx2md/internal/export"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/gitinfo"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	StartFolder string `name:"start-folder" help:"Folder below the docs root to export (export.start_folder)"`
	Output      string `short:"o" help:"Output folder (output.folder)" type:"path"`
	Force       bool   `help:"Rewrite documents even when their content is unchanged"`
	Index       bool   `help:"Update the file-mapping index after exporting"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	e.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pub := newPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()

	summary, err := runExport(ctx, g, cfg, pub)
	if err != nil {
		return err
	}
	if e.Index {
		if err := runIndex(ctx, g, cfg, IndexCmd{}, summary.Commit); err != nil {
			return err
		}
	}
	if summary.Failed > 0 {
		return ferrors.ExportError(strconv.Itoa(summary.Failed) + " documents failed to export").Build()
	}
	return nil
}

// apply copies flag overrides into cfg.
func (e *ExportCmd) apply(cfg *config.Config) {
	if e.StartFolder != "" {
		cfg.Export.StartFolder = e.StartFolder
	}
	if e.Output != "" {
		cfg.Output.Folder = e.Output
	}
	if e.Force {
		off := false
		cfg.Export.SkipUnchanged = &off
	}
}

// runExport performs one export run with a fresh converter, so edits to the variable
// sources are picked up between runs.
func runExport(ctx context.Context, g *Global, cfg *config.Config, pub events.Publisher) (*export.Summary, error) {
	conv, err := newConverter(g, cfg, cfg.Output.Folder)
	if err != nil {
		return nil, err
	}
	rec, flush := newRecorder(cfg)
	defer flush()

	commit := ""
	if info, err := gitinfo.Head(cfg.DocsRoot); err != nil {
		g.Logger.Warn("Cannot read docs commit", logfields.Error(err))
	} else if info != nil {
		commit = info.Commit
	}

	exporter, err := export.New(conv, export.Options{
		DocsRoot:      cfg.DocsRoot,
		OutputRoot:    cfg.Output.Folder,
		StartFolder:   cfg.Export.StartFolder,
		ProductsFile:  cfg.Export.ProductsFile,
		SkipFolders:   cfg.Export.SkipFolders,
		SkipUnchanged: cfg.Export.SkipUnchangedEnabled(),
		Commit:        commit,
		Recorder:      rec,
		Publisher:     pub,
		Logger:        g.Logger,
	})
	if err != nil {
		return nil, err
	}

	summary, err := exporter.Run(ctx)
	if err != nil {
		return nil, err
	}
	summary.Print(os.Stdout)
	return summary, nil
}

// indexPaths resolves the index database and JSON mirror inside the index folder.
func indexPaths(cfg *config.Config) (db, jsonFile string) {
	return resolve(cfg.Index.OutputFolder, cfg.Index.Database), resolve(cfg.Index.OutputFolder, filepath.FromSlash(cfg.Index.JSONFile))
}
