package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/mdx2md/internal/config"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/gitinfo"
	"git.home.luguber.info/inful/mdx2md/internal/mapping"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Source       string `help:"Folder of exported Markdown (output.folder)" type:"path"`
	OutputFolder string `name:"output-folder" help:"Folder receiving <id>__<name>.md copies (index.output_folder)" type:"path"`
	JSONFile     string `name:"json-file" help:"JSON index file name inside the output folder (index.json_file)"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	commit := ""
	if info, err := gitinfo.Head(cfg.DocsRoot); err == nil && info != nil {
		commit = info.Commit
	}
	return runIndex(context.Background(), g, cfg, *i, commit)
}

func runIndex(ctx context.Context, g *Global, cfg *config.Config, flags IndexCmd, commit string) error {
	source := cfg.Output.Folder
	if flags.Source != "" {
		source = flags.Source
	}
	if flags.OutputFolder != "" {
		cfg.Index.OutputFolder = flags.OutputFolder
	}
	if flags.JSONFile != "" {
		cfg.Index.JSONFile = flags.JSONFile
	}

	if err := os.MkdirAll(cfg.Index.OutputFolder, 0o750); err != nil {
		return ferrors.FileSystemError("cannot create index folder").WithCause(err).WithPath(cfg.Index.OutputFolder).Build()
	}
	dbPath, jsonPath := indexPaths(cfg)
	store, err := mapping.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := mapping.NewIndexer(store, mapping.IndexOptions{
		SourceRoot:   source,
		OutputFolder: cfg.Index.OutputFolder,
		JSONFile:     jsonPath,
		Commit:       commit,
		Logger:       g.Logger,
	}).Run(ctx)
	if err != nil {
		return err
	}
	g.Logger.Info("Index written",
		"processed", report.Processed,
		"new", report.New,
		"skipped", len(report.Skipped),
		"total", report.Total,
		"json", jsonPath)
	return nil
}
