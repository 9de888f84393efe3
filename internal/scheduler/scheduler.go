package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/config"
)

const jobTimeout = 2 * time.Minute

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Jobs are the timed tasks the shop runs. DailySync may be nil.
type Jobs struct {
	AutomaticBackup Job
	DailySync       Job
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ScheduleConfig
	jobs     Jobs
	location *time.Location
	backupID cron.EntryID
	syncID   cron.EntryID
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ScheduleConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		jobs:     jobs,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source used for next-run reporting.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start registers the jobs and starts the scheduler. Each run targets the next
// occurrence of its wall-clock time, so restarts never drift or double-fire.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.location.String()))

	if s.jobs.AutomaticBackup != nil {
		id, err := s.cron.AddFunc(s.cfg.BackupCron, s.wrap("automatic_backup", s.jobs.AutomaticBackup))
		if err != nil {
			return fmt.Errorf("schedule automatic backup %q: %w", s.cfg.BackupCron, err)
		}
		s.backupID = id
	}

	if s.jobs.DailySync != nil && s.cfg.DailySyncCron != "" {
		id, err := s.cron.AddFunc(s.cfg.DailySyncCron, s.wrap("daily_sync", s.jobs.DailySync))
		if err != nil {
			return fmt.Errorf("schedule daily sync %q: %w", s.cfg.DailySyncCron, err)
		}
		s.syncID = id
	}

	s.cron.Start()
	if next := s.NextBackup(); !next.IsZero() {
		s.logger.Info("next automatic backup", zap.Time("at", next))
	}
	if next := s.NextSync(); !next.IsZero() {
		s.logger.Info("next daily sync", zap.Time("at", next))
	}
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// NextBackup returns when the automatic backup fires next, or zero when not scheduled.
func (s *Scheduler) NextBackup() time.Time {
	return s.next(s.backupID, s.cfg.BackupCron)
}

// NextSync returns when the daily sync fires next, or zero when not scheduled.
func (s *Scheduler) NextSync() time.Time {
	return s.next(s.syncID, s.cfg.DailySyncCron)
}

func (s *Scheduler) next(id cron.EntryID, spec string) time.Time {
	if id == 0 {
		return time.Time{}
	}
	at, err := NextRun(spec, s.location, s.now())
	if err != nil {
		return time.Time{}
	}
	return at
}

// NextRun computes the first activation of spec strictly after from, in loc.
func NextRun(spec string, loc *time.Location, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return sched.Next(from.In(loc)), nil
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		s.logger.Info("running scheduled job", zap.String("job", name))
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job completed", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	}
}
