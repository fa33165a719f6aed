// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const purgeTimeout = 30 * time.Minute

// FilePurger deletes stored statement files uploaded before a cutoff.
type FilePurger interface {
	PurgeExpiredFiles(ctx context.Context, before time.Time) (int, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	purger    FilePurger
	retention time.Duration
	spec      string
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler creates a new job scheduler. The purge job runs on spec, a
// standard 5-field cron expression, and removes files older than retention.
func NewScheduler(purger FilePurger, spec string, retention time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		purger:    purger,
		retention: retention,
		spec:      spec,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins scheduled jobs. A zero retention disables the purge job.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		s.logger.Info("statement file retention disabled")
		return nil
	}
	if s.spec == "" {
		return errors.New("purge schedule is empty")
	}

	if _, err := s.cron.AddFunc(s.spec, s.purgeExpiredFiles); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("purge_schedule", s.spec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the purge and waits for it.
func (s *Scheduler) RunNow() {
	s.purgeExpiredFiles()
}

func (s *Scheduler) purgeExpiredFiles() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	s.logger.Info("starting statement file purge", slog.Time("cutoff", cutoff))

	n, err := s.purger.PurgeExpiredFiles(ctx, cutoff)
	if err != nil {
		s.logger.Error("statement file purge failed",
			slog.Int("files_purged", n),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("statement file purge completed", slog.Int("files_purged", n))
}
