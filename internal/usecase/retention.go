package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/files"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/metrics"
	"github.com/sirupsen/logrus"
)

var (
	tempFilePatterns   = []string{"relatorio_*.pdf", "relatorio_*.xlsx", "temp_export_*"}
	logFilePatterns    = []string{"*.log*"}
	backupFilePatterns = []string{"*"}
)

type TaskResult struct {
	Name    string `json:"name"`
	Deleted int64  `json:"deleted"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Report struct {
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Tasks    []TaskResult `json:"tasks"`
}

func (r Report) Failed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Error != "" {
			n++
		}
	}
	return n
}

type RetentionStats struct {
	repository.AuditStats
	Critical int64 `json:"critical"`
	Eligible int64 `json:"eligible_for_deletion"`
}

// Retention deletes aged audit entries, sessions, notifications and files.
type Retention struct {
	audit         repository.AuditRepository
	sessions      repository.SessionRepository
	notifications repository.NotificationRepository
	backups       repository.BackupSource
	logger        service.ActivityLogger
	cfg           config.Retention
	notifCfg      config.Notifications
	log           *logrus.Logger
	pause         func(ctx context.Context, d time.Duration) error
}

func NewRetention(
	audit repository.AuditRepository,
	sessions repository.SessionRepository,
	notifications repository.NotificationRepository,
	backups repository.BackupSource,
	logger service.ActivityLogger,
	cfg config.Retention,
	notifCfg config.Notifications,
	log *logrus.Logger,
) *Retention {
	return &Retention{
		audit:         audit,
		sessions:      sessions,
		notifications: notifications,
		backups:       backups,
		logger:        logger,
		cfg:           cfg,
		notifCfg:      notifCfg,
		log:           log,
		pause:         sleepCtx,
	}
}

type retentionTask struct {
	name string
	run  func(ctx context.Context, now time.Time) (int64, error)
}

// RunAll runs every cleanup task. A failing or panicking task is recorded
// in the report and the remaining tasks still run.
func (r *Retention) RunAll(ctx context.Context, now time.Time) Report {
	tasks := []retentionTask{
		{"sessions", r.CleanupSessions},
		{"temp_files", r.CleanupTempFiles},
		{"log_files", r.CleanupLogFiles},
		{"backups", r.CleanupBackups},
		{"audit_entries", r.CleanupAuditEntries},
		{"notifications", r.PurgeNotifications},
		{"compact", r.compact},
	}

	report := Report{Started: now}
	for _, t := range tasks {
		if ctx.Err() != nil {
			report.Tasks = append(report.Tasks, TaskResult{Name: t.name, Skipped: true, Error: ctx.Err().Error()})
			continue
		}
		report.Tasks = append(report.Tasks, r.runTask(ctx, now, t))
	}
	report.Finished = time.Now().UTC()

	r.log.WithFields(logrus.Fields{
		"tasks":  len(report.Tasks),
		"failed": report.Failed(),
	}).Info("retention: cycle finished")
	return report
}

func (r *Retention) runTask(ctx context.Context, now time.Time, t retentionTask) (res TaskResult) {
	res.Name = t.name
	defer func() {
		if p := recover(); p != nil {
			res.Error = fmt.Sprintf("panic: %v", p)
			r.log.WithField("task", t.name).Errorf("retention: task panicked: %v", p)
		}
	}()

	deleted, err := t.run(ctx, now)
	res.Deleted = deleted
	if err != nil {
		res.Error = err.Error()
		r.log.WithError(err).WithField("task", t.name).Error("retention: task failed")
		return res
	}
	if deleted > 0 {
		metrics.RetentionDeleted.WithLabelValues(t.name).Add(float64(deleted))
	}
	r.log.WithFields(logrus.Fields{"task": t.name, "deleted": deleted}).Debug("retention: task done")
	return res
}

func (r *Retention) CleanupSessions(ctx context.Context, now time.Time) (int64, error) {
	return r.sessions.DeleteExpired(ctx, now, r.cfg.SessionMaxAge)
}

func (r *Retention) CleanupTempFiles(_ context.Context, now time.Time) (int64, error) {
	return sweep(r.cfg.TempDir, tempFilePatterns, now, r.cfg.TempMaxAge)
}

func (r *Retention) CleanupLogFiles(_ context.Context, now time.Time) (int64, error) {
	return sweep(r.cfg.LogDir, logFilePatterns, now, r.cfg.LogMaxAge)
}

// CleanupBackups removes aged files at the top of the backup dir. Annual
// backups live in a subdirectory and are never swept.
func (r *Retention) CleanupBackups(_ context.Context, now time.Time) (int64, error) {
	return sweep(r.cfg.BackupDir, backupFilePatterns, now, r.cfg.BackupMaxAge)
}

func sweep(dir string, patterns []string, now time.Time, maxAge time.Duration) (int64, error) {
	if dir == "" || maxAge <= 0 {
		return 0, nil
	}
	n, err := files.Sweep(dir, patterns, now.Add(-maxAge))
	return int64(n), err
}

// Cutoffs returns the ordinary and critical deletion cutoffs for now.
func (r *Retention) Cutoffs(now time.Time) (time.Time, time.Time) {
	cutoff := now.AddDate(0, 0, -r.cfg.Days)
	critical := now.AddDate(0, 0, -r.cfg.CriticalDays)
	if critical.After(cutoff) {
		critical = cutoff
	}
	return cutoff, critical
}

// CleanupAuditEntries deletes expired entries one batch per transaction and
// records a CLEANUP entry when anything was removed.
func (r *Retention) CleanupAuditEntries(ctx context.Context, now time.Time) (int64, error) {
	if r.cfg.Days <= 0 {
		return 0, nil
	}
	cutoff, criticalCutoff := r.Cutoffs(now)
	batch := r.cfg.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	var total int64
	for {
		n, err := r.audit.DeleteExpiredBatch(ctx, cutoff, criticalCutoff, entity.CriticalActions, batch)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(batch) {
			break
		}
		r.log.WithField("deleted", total).Debug("retention: audit batch removed")
		if err := r.pause(ctx, r.cfg.BatchPause); err != nil {
			return total, err
		}
	}

	if total > 0 && r.logger != nil {
		r.logger.Log(ctx, service.Activity{
			Action:      entity.ActionCleanup,
			Module:      "system",
			Description: fmt.Sprintf("Limpeza automática removeu %d logs antigos", total),
			ExtraData: map[string]any{
				"deleted_count":           total,
				"retention_days":          r.cfg.Days,
				"critical_retention_days": r.cfg.CriticalDays,
				"cutoff_date":             cutoff.Format(time.RFC3339),
			},
			Actor: &service.ActorOverride{UserName: "system", UserType: "system"},
		})
	}
	return total, nil
}

func (r *Retention) PurgeNotifications(ctx context.Context, now time.Time) (int64, error) {
	if r.notifCfg.RetentionDays <= 0 || r.notifications == nil {
		return 0, nil
	}
	return r.notifications.Purge(ctx, now.AddDate(0, 0, -r.notifCfg.RetentionDays), r.notifCfg.PurgeReadOnly)
}

func (r *Retention) compact(ctx context.Context, _ time.Time) (int64, error) {
	if !r.cfg.Compact {
		return 0, nil
	}
	return 0, r.audit.Compact(ctx)
}

// AnnualBackupPath is where the backup for year is written.
func (r *Retention) AnnualBackupPath(year int) string {
	return filepath.Join(r.cfg.BackupDir, "annual", "backup_anual_"+strconv.Itoa(year)+".json")
}

// AnnualBackup writes the yearly snapshot on January 1st. It reports whether
// a backup was written; an existing file for the year is left alone.
func (r *Retention) AnnualBackup(ctx context.Context, now time.Time) (bool, error) {
	if !r.cfg.AnnualBackup || r.backups == nil || r.cfg.BackupDir == "" {
		return false, nil
	}
	if now.Month() != time.January || now.Day() != 1 {
		return false, nil
	}
	path := r.AnnualBackupPath(now.Year())
	if files.Exists(path) {
		r.log.WithField("path", path).Debug("retention: annual backup already exists")
		return false, nil
	}

	tables, err := r.backups.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	data, err := json.MarshalIndent(map[string]any{
		"year":       now.Year(),
		"created_at": now.Format(time.RFC3339),
		"tables":     tables,
	}, "", "  ")
	if err != nil {
		return false, err
	}
	if err := files.WriteFileAtomic(path, data); err != nil {
		return false, err
	}
	r.log.WithField("path", path).Info("retention: annual backup created")
	return true, nil
}

func (r *Retention) Stats(ctx context.Context, now time.Time) (RetentionStats, error) {
	base, err := r.audit.Stats(ctx, now, 10)
	if err != nil {
		return RetentionStats{}, err
	}
	critical, err := r.audit.CountCritical(ctx, entity.CriticalActions)
	if err != nil {
		return RetentionStats{}, err
	}
	cutoff, criticalCutoff := r.Cutoffs(now)
	eligible, err := r.audit.CountExpired(ctx, cutoff, criticalCutoff, entity.CriticalActions)
	if err != nil {
		return RetentionStats{}, err
	}
	return RetentionStats{AuditStats: base, Critical: critical, Eligible: eligible}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
