package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *DB
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts every row or none. Inside an outer transaction it runs
// in a savepoint.
func (r *NotificationRepository) CreateBatch(ctx context.Context, rows []entity.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Write(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (r *NotificationRepository) ListCursor(ctx context.Context, userID uint, unreadOnly bool, limit int, cursor string) ([]entity.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Read(ctx).
		Where("user_id = ?", userID).
		Limit(limit).
		Order("created_at DESC").
		Order("id DESC")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if cursor != "" {
		cursorTime, cursorID, err := pagination.Decode(cursor)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, repository.ErrInvalidCursor
			}
			return nil, err
		}
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursorTime, cursorTime, cursorID)
	}

	var rows []entity.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.Read(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one notification owned by userID. Someone else's id reads
// as not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	var row entity.Notification
	if err := r.db.Write(ctx).First(&row, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return notFound(err)
	}
	if row.IsRead {
		return nil
	}
	return r.db.Write(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.Write(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) MarkReadForTicket(ctx context.Context, userID, ticketID uint) (int64, error) {
	res := r.db.Write(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND ticket_id = ? AND is_read = ?", userID, ticketID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) Purge(ctx context.Context, olderThan time.Time, readOnly bool) (int64, error) {
	query := r.db.Write(ctx).Where("created_at < ?", olderThan)
	if readOnly {
		query = query.Where("is_read = ?", true)
	}
	res := query.Delete(&entity.Notification{})
	return res.RowsAffected, res.Error
}
