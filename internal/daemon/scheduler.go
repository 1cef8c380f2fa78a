package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// Scheduler wraps gocron scheduler for periodic exports.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.DaemonError("failed to create gocron scheduler").WithCause(err).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for a running task.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleExport runs task on a cron expression, or every interval when interval is set.
// Runs never overlap: a tick that fires while the previous run is active is skipped.
// Returns the job ID.
func (s *Scheduler) ScheduleExport(ctx context.Context, cron string, interval time.Duration, task func(context.Context)) (string, error) {
	var def gocron.JobDefinition
	switch {
	case interval > 0:
		def = gocron.DurationJob(interval)
	case cron != "":
		def = gocron.CronJob(cron, false)
	default:
		return "", ferrors.ValidationError("either a schedule or an interval is required").Build()
	}

	job, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(func() { task(ctx) }),
		gocron.WithName("export"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.DaemonError("failed to create export job").
			WithCause(err).
			WithContext("schedule", cron).
			Build()
	}

	slog.Info("Scheduled export", slog.String("schedule", cron), slog.Duration("interval", interval))
	return job.ID().String(), nil
}
