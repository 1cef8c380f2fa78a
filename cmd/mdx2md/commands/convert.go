package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdx2md/internal/convert"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	MDXPath  string `name:"mdx-path" required:"" help:"MDX document to convert" type:"existingfile"`
	Platform string `short:"p" help:"Platform selection (defaults.platform when empty)"`
	Product  string `help:"Product selection (first folder below the docs root when empty)"`
	Output   string `short:"o" help:"Output file; Markdown goes to stdout and assets to output.folder when empty" type:"path"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	outputRoot := cfg.Output.Folder
	req := convert.Request{Path: c.MDXPath, Platform: c.Platform, Product: c.Product}
	if c.Output != "" {
		outputRoot = filepath.Dir(c.Output)
		req.OutputRel = filepath.Base(c.Output)
	}
	conv, err := newConverter(g, cfg, outputRoot)
	if err != nil {
		return err
	}

	res, err := conv.Convert(req)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		g.Logger.Debug("Conversion warning", logfields.Kind(string(w.Kind)), logfields.Stage(w.Stage), slog.String("message", w.Message))
	}

	if c.Output == "" {
		_, err = fmt.Fprint(os.Stdout, res.Markdown)
		return err
	}
	if err := convert.WriteAtomic(c.Output, []byte(res.Markdown)); err != nil {
		return ferrors.FileSystemError("failed to write output").WithCause(err).WithPath(c.Output).WithStage(convert.StageWrite).Build()
	}
	g.Logger.Info("Converted document",
		logfields.Path(c.MDXPath),
		logfields.Output(c.Output),
		logfields.Warnings(len(res.Warnings)),
		slog.Int("assets", len(res.Assets)))
	return nil
}
