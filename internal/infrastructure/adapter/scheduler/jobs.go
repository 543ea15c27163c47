package scheduler

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

// BackupPruner removes table backups older than the retention window
type BackupPruner interface {
	PruneBackups(ctx context.Context, now time.Time, retention time.Duration) (int, error)
}

// LeaseCleaner removes expired blob leases
type LeaseCleaner interface {
	DeleteExpiredLeases(ctx context.Context) (int64, error)
}

// HealthChecker reports storage health
type HealthChecker interface {
	Health(ctx context.Context, now time.Time) *storage.HealthReport
}

// HealthObserver receives every storage health report
type HealthObserver interface {
	ObserveStorageHealth(report *storage.HealthReport)
}

// JobDependencies groups the collaborators of the maintenance jobs; nil members disable their job
type JobDependencies struct {
	Backups   BackupPruner
	Leases    LeaseCleaner
	Health    HealthChecker
	Observer  HealthObserver
	Clock     coreport.TimeProvider
	Logger    coreport.Logger
	Retention time.Duration
	Timeout   time.Duration
}

// Jobs holds the maintenance tasks run by the scheduler
type Jobs struct {
	deps JobDependencies
}

// NewJobs creates the job runner
func NewJobs(deps JobDependencies) *Jobs {
	if deps.Timeout <= 0 {
		deps.Timeout = time.Minute
	}
	return &Jobs{deps: deps}
}

// PruneBackups deletes backups past the retention window
func (j *Jobs) PruneBackups() {
	if j.deps.Backups == nil || j.deps.Retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.deps.Timeout)
	defer cancel()

	removed, err := j.deps.Backups.PruneBackups(ctx, j.deps.Clock.Now(), j.deps.Retention)
	if err != nil {
		j.deps.Logger.Error("Backup retention job failed", map[string]any{
			"error":   err.Error(),
			"removed": removed,
		})
		return
	}
	j.deps.Logger.Info("Backup retention job finished", map[string]any{
		"removed":   removed,
		"retention": j.deps.Retention.String(),
	})
}

// CleanupLeases deletes expired blob leases
func (j *Jobs) CleanupLeases() {
	if j.deps.Leases == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.deps.Timeout)
	defer cancel()

	removed, err := j.deps.Leases.DeleteExpiredLeases(ctx)
	if err != nil {
		j.deps.Logger.Error("Lease cleanup job failed", map[string]any{"error": err.Error()})
		return
	}
	if removed > 0 {
		j.deps.Logger.Info("Expired leases removed", map[string]any{"removed": removed})
	}
}

// CheckStorage logs storage health and forwards the report to the observer
func (j *Jobs) CheckStorage() {
	if j.deps.Health == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.deps.Timeout)
	defer cancel()

	report := j.deps.Health.Health(ctx, j.deps.Clock.Now())
	if j.deps.Observer != nil {
		j.deps.Observer.ObserveStorageHealth(report)
	}

	fields := map[string]any{
		"status":  report.Status,
		"backend": report.Backend,
		"tables":  len(report.Tables),
	}
	if report.Status != storage.StatusHealthy {
		fields["errors"] = report.Errors
		j.deps.Logger.Warn("Storage degraded", fields)
		return
	}
	j.deps.Logger.Debug("Storage healthy", fields)
}
