// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs the snapshot cache pruning every five minutes.
const DefaultPruneSchedule = "*/5 * * * *"

// SnapshotPruner drops expired ledger snapshots.
type SnapshotPruner interface {
	PruneSnapshots() int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	pruner   SnapshotPruner
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. An empty schedule uses DefaultPruneSchedule.
func NewScheduler(pruner SnapshotPruner, schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		pruner:   pruner,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.pruneSnapshots() }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// AddJob registers an extra job. The job returns how many items it removed.
func (s *Scheduler) AddJob(schedule, name string, job func() int) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if removed := job(); removed > 0 {
			s.logger.Debug("cron job finished", slog.String("job", name), slog.Int("removed", removed))
		}
	})
	return err
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the pruning job synchronously and returns how many snapshots were dropped.
func (s *Scheduler) RunNow() int {
	return s.pruneSnapshots()
}

func (s *Scheduler) pruneSnapshots() int {
	removed := s.pruner.PruneSnapshots()
	if removed > 0 {
		s.logger.Debug("pruned ledger snapshots", slog.Int("removed", removed))
	}
	return removed
}
