package repository

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

// AuditFilter narrows listing and export. Zero values mean no filter.
// DateTo is an exclusive upper bound.
type AuditFilter struct {
	Action   string
	Module   string
	UserID   *uint
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
}

type Bucket struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}

type AuditStats struct {
	Total      int64    `json:"total"`
	Last24h    int64    `json:"last_24h"`
	Last7d     int64    `json:"last_7d"`
	TopActions []Bucket `json:"top_actions"`
	TopModules []Bucket `json:"top_modules"`
	TopUsers   []Bucket `json:"top_users"`
}

type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	GetByID(ctx context.Context, id uint) (entity.AuditEntry, error)
	ListCursor(ctx context.Context, filter AuditFilter, limit int, cursor string) ([]entity.AuditEntry, error)
	Export(ctx context.Context, filter AuditFilter, limit int) ([]entity.AuditEntry, error)
	Stats(ctx context.Context, now time.Time, top int) (AuditStats, error)
	CountExpired(ctx context.Context, cutoff, criticalCutoff time.Time, critical []string) (int64, error)
	CountCritical(ctx context.Context, critical []string) (int64, error)
	DeleteExpiredBatch(ctx context.Context, cutoff, criticalCutoff time.Time, critical []string, batchSize int) (int64, error)
	Compact(ctx context.Context) error
}

// BackupSource dumps the tables included in the annual backup.
type BackupSource interface {
	Snapshot(ctx context.Context) (map[string]any, error)
}
