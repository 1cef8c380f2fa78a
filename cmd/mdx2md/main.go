package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdx2md/cmd/mdx2md/commands"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Logger: slog.Default()}
	ctx := kong.Parse(&cli,
		kong.Name("mdx2md"),
		kong.Description("Convert MDX documentation into published Markdown."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
