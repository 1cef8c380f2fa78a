// Package daemon keeps an export up to date: on a cron schedule or interval, on changes
// to the docs tree, or both.
package daemon

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// Trigger names what started a run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerWatch    Trigger = "watch"
)

// RunFunc performs one export. changed lists the files that triggered a watch run.
type RunFunc func(ctx context.Context, trigger Trigger, changed []string) error

// Options configures a Daemon.
type Options struct {
	DocsRoot string
	Schedule string        // cron expression
	Interval time.Duration // overrides Schedule when set
	Watch    bool
	Debounce time.Duration
	// RunOnStart performs one export before waiting for triggers.
	RunOnStart bool
}

// Daemon serializes exports started by its triggers.
type Daemon struct {
	opts Options
	run  RunFunc

	runMu sync.Mutex
	mu    sync.Mutex
	runs  int
	last  time.Time
	err   error
}

// New returns a Daemon calling run for every export.
func New(opts Options, run RunFunc) (*Daemon, error) {
	if run == nil {
		return nil, ferrors.ValidationError("run function is required").Build()
	}
	if !opts.Watch && opts.Schedule == "" && opts.Interval <= 0 {
		return nil, ferrors.ValidationError("daemon needs a schedule, an interval, or watch mode").Build()
	}
	if opts.Watch && opts.DocsRoot == "" {
		return nil, ferrors.ValidationError("watch mode needs a docs root").Build()
	}
	return &Daemon{opts: opts, run: run}, nil
}

// Run blocks until ctx is canceled. A running export is allowed to finish.
func (d *Daemon) Run(ctx context.Context) error {
	if d.opts.RunOnStart {
		d.execute(ctx, TriggerStartup, nil)
	}

	if d.opts.Schedule != "" || d.opts.Interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleExport(ctx, d.opts.Schedule, d.opts.Interval, func(ctx context.Context) {
			d.execute(ctx, TriggerSchedule, nil)
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	if d.opts.Watch {
		deb := NewDebouncer(d.opts.Debounce, 0)
		w, err := NewWatcher(d.opts.DocsRoot, deb.Trigger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return err
		}
		defer func() { _ = w.Stop() }()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			deb.Run(ctx, func(ctx context.Context, paths []string) {
				d.execute(ctx, TriggerWatch, paths)
			})
		}()
		defer wg.Wait()
	}

	slog.Info("Daemon running", slog.Bool("watch", d.opts.Watch), slog.String("schedule", d.opts.Schedule), slog.Duration("interval", d.opts.Interval))
	<-ctx.Done()
	slog.Info("Daemon stopping")
	return nil
}

func (d *Daemon) execute(ctx context.Context, trigger Trigger, changed []string) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	slog.Info("Export triggered", slog.String("trigger", string(trigger)), slog.Int("changed", len(changed)))
	err := d.run(ctx, trigger, changed)
	if err != nil {
		slog.Error("Export failed", slog.String("trigger", string(trigger)), logfields.Error(err))
	}

	d.mu.Lock()
	d.runs++
	d.last = start
	d.err = err
	d.mu.Unlock()
}

// Status reports how many exports ran, when the last one started, and its error.
func (d *Daemon) Status() (runs int, last time.Time, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs, d.last, d.err
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
