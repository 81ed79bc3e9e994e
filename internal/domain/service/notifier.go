package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

// Notifier fans ticket events out into per-recipient notifications. Failures
// are logged and reported as zero rows created.
type Notifier interface {
	TicketOpened(ctx context.Context, ticket entity.Ticket, requester entity.User) int
	ReplyAdded(ctx context.Context, ticket entity.Ticket, replier entity.User) int
	TicketClaimed(ctx context.Context, ticketID, claimerID uint) int64
	TicketAssigned(ctx context.Context, ticket entity.Ticket, assignee entity.User, actorID uint) int
	TicketClosed(ctx context.Context, ticket entity.Ticket, closer entity.User) int
}

type NotificationService interface {
	List(ctx context.Context, userID uint, unreadOnly bool, limit int, cursor string) ([]entity.Notification, string, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}
