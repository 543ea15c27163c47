package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// Job names
const (
	JobBackupRetention = "backup-retention"
	JobLeaseCleanup    = "lease-cleanup"
	JobStorageHealth   = "storage-health"
)

// Schedules maps job names to cron specs; an empty spec leaves the job out
type Schedules struct {
	BackupRetention string
	LeaseCleanup    string
	StorageHealth   string
}

// Scheduler runs the maintenance jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger coreport.Logger

	entries map[string]cron.EntryID
}

// NewScheduler creates a scheduler whose jobs recover from panics and never overlap themselves
func NewScheduler(jobs *Jobs, logger coreport.Logger) *Scheduler {
	cronLogger := cronLogAdapter{logger: logger}
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	return &Scheduler{
		cron:    c,
		jobs:    jobs,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Register adds every job with a non-empty schedule
func (s *Scheduler) Register(schedules Schedules) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{JobBackupRetention, schedules.BackupRetention, s.jobs.PruneBackups},
		{JobLeaseCleanup, schedules.LeaseCleanup, s.jobs.CleanupLeases},
		{JobStorageHealth, schedules.StorageHealth, s.jobs.CheckStorage},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		id, err := s.cron.AddFunc(job.spec, job.fn)
		if err != nil {
			return fmt.Errorf("schedule %s job %q: %w", job.name, job.spec, err)
		}
		s.entries[job.name] = id
		s.logger.Info("Scheduled job", map[string]any{"job": job.name, "schedule": job.spec})
	}
	return nil
}

// Jobs lists the registered job names
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.entries))
	for _, name := range []string{JobBackupRetention, JobLeaseCleanup, JobStorageHealth} {
		if _, ok := s.entries[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogAdapter routes cron's logr-style calls into the core logger
type cronLogAdapter struct {
	logger coreport.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	fields := kvFields(keysAndValues)
	fields["error"] = fmt.Sprint(err)
	a.logger.Error("cron: "+msg, fields)
}

func kvFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
