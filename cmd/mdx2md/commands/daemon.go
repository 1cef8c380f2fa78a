package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdx2md/internal/config"
	"git.home.luguber.info/inful/mdx2md/internal/daemon"
	"git.home.luguber.info/inful/mdx2md/internal/events"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	StartFolder string `name:"start-folder" help:"Folder below the docs root to export (export.start_folder)"`
	Output      string `short:"o" help:"Output folder (output.folder)" type:"path"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	(&ExportCmd{StartFolder: w.StartFolder, Output: w.Output}).apply(cfg)
	return runDaemon(g, cfg, daemon.Options{
		DocsRoot:   cfg.DocsRoot,
		Watch:      true,
		Debounce:   cfg.Daemon.Debounce.Std(),
		RunOnStart: true,
	}, false)
}

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Watch bool `help:"Also re-export on docs changes (daemon.watch)"`
	Index bool `help:"Update the file-mapping index after every export"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	return runDaemon(g, cfg, daemon.Options{
		DocsRoot:   cfg.DocsRoot,
		Schedule:   cfg.Daemon.Schedule,
		Interval:   cfg.Daemon.Interval.Std(),
		Watch:      d.Watch || cfg.Daemon.Watch,
		Debounce:   cfg.Daemon.Debounce.Std(),
		RunOnStart: true,
	}, d.Index)
}

func runDaemon(g *Global, cfg *config.Config, opts daemon.Options, index bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pub := newPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()

	d, err := daemon.New(opts, exportTask(g, cfg, pub, index))
	if err != nil {
		return err
	}
	return d.Run(ctx)
}

func exportTask(g *Global, cfg *config.Config, pub events.Publisher, index bool) daemon.RunFunc {
	return func(ctx context.Context, trigger daemon.Trigger, changed []string) error {
		for _, p := range changed {
			g.Logger.Debug("Changed", logfields.Path(p))
		}
		summary, err := runExport(ctx, g, cfg, pub)
		if err != nil {
			return err
		}
		if index && summary.Converted > 0 {
			return runIndex(ctx, g, cfg, IndexCmd{}, summary.Commit)
		}
		return nil
	}
}
