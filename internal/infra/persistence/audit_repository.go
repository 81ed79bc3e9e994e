package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *DB
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create writes the entry in its own transaction, or in a savepoint when ctx
// already carries one, so a failed insert never poisons the caller's work.
func (r *AuditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	return r.db.Write(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

func (r *AuditRepository) GetByID(ctx context.Context, id uint) (entity.AuditEntry, error) {
	var entry entity.AuditEntry
	if err := r.db.Read(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.AuditEntry{}, repository.ErrNotFound
		}
		return entity.AuditEntry{}, err
	}
	return entry, nil
}

func (r *AuditRepository) ListCursor(ctx context.Context, filter repository.AuditFilter, limit int, cursor string) ([]entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := applyAuditFilter(r.db.Read(ctx).Model(&entity.AuditEntry{}), filter).
		Limit(limit).
		Order("timestamp DESC").
		Order("id DESC")

	if cursor != "" {
		cursorTime, cursorID, err := pagination.Decode(cursor)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, repository.ErrInvalidCursor
			}
			return nil, err
		}
		query = query.Where("((timestamp < ?) OR (timestamp = ? AND id < ?))", cursorTime, cursorTime, cursorID)
	}

	var entries []entity.AuditEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuditRepository) Export(ctx context.Context, filter repository.AuditFilter, limit int) ([]entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 1000
	}
	var entries []entity.AuditEntry
	err := applyAuditFilter(r.db.Read(ctx).Model(&entity.AuditEntry{}), filter).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuditRepository) Stats(ctx context.Context, now time.Time, top int) (repository.AuditStats, error) {
	if top <= 0 {
		top = 10
	}
	var stats repository.AuditStats
	base := func() *gorm.DB { return r.db.Read(ctx).Model(&entity.AuditEntry{}) }

	if err := base().Count(&stats.Total).Error; err != nil {
		return repository.AuditStats{}, err
	}
	if err := base().Where("timestamp >= ?", now.Add(-24*time.Hour)).Count(&stats.Last24h).Error; err != nil {
		return repository.AuditStats{}, err
	}
	if err := base().Where("timestamp >= ?", now.AddDate(0, 0, -7)).Count(&stats.Last7d).Error; err != nil {
		return repository.AuditStats{}, err
	}

	groups := []struct {
		column string
		dest   *[]repository.Bucket
	}{
		{"action", &stats.TopActions},
		{"module", &stats.TopModules},
		{"user_name", &stats.TopUsers},
	}
	for _, g := range groups {
		err := base().
			Select(g.column+" AS label, COUNT(*) AS total").
			Where(g.column+" <> ''").
			Group(g.column).
			Order("total DESC").
			Limit(top).
			Scan(g.dest).Error
		if err != nil {
			return repository.AuditStats{}, err
		}
	}
	return stats, nil
}

func (r *AuditRepository) CountExpired(ctx context.Context, cutoff, criticalCutoff time.Time, critical []string) (int64, error) {
	var n int64
	err := expiredScope(r.db.Read(ctx).Model(&entity.AuditEntry{}), cutoff, criticalCutoff, critical).Count(&n).Error
	return n, err
}

func (r *AuditRepository) CountCritical(ctx context.Context, critical []string) (int64, error) {
	var n int64
	err := r.db.Read(ctx).Model(&entity.AuditEntry{}).Where("action IN ?", critical).Count(&n).Error
	return n, err
}

// DeleteExpiredBatch removes at most batchSize expired rows inside one short
// transaction and reports how many were removed.
func (r *AuditRepository) DeleteExpiredBatch(ctx context.Context, cutoff, criticalCutoff time.Time, critical []string, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	var deleted int64
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		ids := expiredScope(r.db.Write(txCtx).Model(&entity.AuditEntry{}), cutoff, criticalCutoff, critical).
			Select("id").
			Order("id").
			Limit(batchSize)
		res := r.db.Write(txCtx).Where("id IN (?)", ids).Delete(&entity.AuditEntry{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *AuditRepository) Compact(ctx context.Context) error {
	return r.db.Write(ctx).Exec("ANALYZE audit_logs").Error
}

func expiredScope(q *gorm.DB, cutoff, criticalCutoff time.Time, critical []string) *gorm.DB {
	if len(critical) == 0 {
		return q.Where("timestamp < ?", cutoff)
	}
	return q.Where("((action NOT IN ? AND timestamp < ?) OR (action IN ? AND timestamp < ?))",
		critical, cutoff, critical, criticalCutoff)
}

func applyAuditFilter(q *gorm.DB, f repository.AuditFilter) *gorm.DB {
	if f.Action != "" {
		q = q.Where("action = ?", strings.ToUpper(f.Action))
	}
	if f.Module != "" {
		q = q.Where("module = ?", strings.ToLower(f.Module))
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.DateFrom != nil {
		q = q.Where("timestamp >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("timestamp < ?", *f.DateTo)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(description) LIKE ? OR LOWER(user_name) LIKE ? OR LOWER(endpoint) LIKE ?)", pattern, pattern, pattern)
	}
	return q
}
