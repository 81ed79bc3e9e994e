package repository

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type NotificationRepository interface {
	CreateBatch(ctx context.Context, rows []entity.Notification) error
	ListCursor(ctx context.Context, userID uint, unreadOnly bool, limit int, cursor string) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	MarkReadForTicket(ctx context.Context, userID, ticketID uint) (int64, error)
	Purge(ctx context.Context, olderThan time.Time, readOnly bool) (int64, error)
}
