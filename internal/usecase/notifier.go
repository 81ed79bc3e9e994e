package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/metrics"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"github.com/sirupsen/logrus"
)

type Notifier struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	publisher service.EventPublisher
	subject   string
	log       *logrus.Logger
}

var (
	_ service.Notifier            = (*Notifier)(nil)
	_ service.NotificationService = (*Notifier)(nil)
)

// NewNotifier builds the fan-out engine. publisher may be nil.
func NewNotifier(repo repository.NotificationRepository, users repository.UserRepository, publisher service.EventPublisher, subject string, log *logrus.Logger) *Notifier {
	return &Notifier{repo: repo, users: users, publisher: publisher, subject: subject, log: log}
}

// TicketOpened alerts every active staff member except the requester.
func (n *Notifier) TicketOpened(ctx context.Context, ticket entity.Ticket, requester entity.User) int {
	staff, err := n.users.ListActiveByRoles(ctx, entity.StaffRoles, requester.ID)
	if err != nil {
		n.log.WithError(err).WithField("ticket_id", ticket.ID).Error("notifier: list staff failed")
		return 0
	}
	return n.fanOut(ctx, ticket, recipientIDs(staff),
		fmt.Sprintf("Novo chamado: %s", ticket.Title),
		fmt.Sprintf("Um novo chamado foi aberto por %s - Prioridade: %s", requester.Name, ticket.Priority),
		entity.NotificationNewTicket)
}

// ReplyAdded notifies the requester when staff replies, and all active staff
// when the client replies.
func (n *Notifier) ReplyAdded(ctx context.Context, ticket entity.Ticket, replier entity.User) int {
	if replier.IsStaff() {
		if ticket.RequesterID == replier.ID {
			return 0
		}
		return n.fanOut(ctx, ticket, []uint{ticket.RequesterID},
			fmt.Sprintf("Resposta no chamado: %s", ticket.Title),
			fmt.Sprintf("%s respondeu ao seu chamado", replier.Name),
			entity.NotificationReply)
	}

	staff, err := n.users.ListActiveByRoles(ctx, entity.StaffRoles, replier.ID)
	if err != nil {
		n.log.WithError(err).WithField("ticket_id", ticket.ID).Error("notifier: list staff failed")
		return 0
	}
	return n.fanOut(ctx, ticket, recipientIDs(staff),
		fmt.Sprintf("Nova resposta do cliente: %s", ticket.Title),
		fmt.Sprintf("%s adicionou uma resposta ao chamado", replier.Name),
		entity.NotificationReply)
}

// TicketClaimed clears the claimer's unread alerts for the ticket.
func (n *Notifier) TicketClaimed(ctx context.Context, ticketID, claimerID uint) int64 {
	marked, err := n.repo.MarkReadForTicket(ctx, claimerID, ticketID)
	if err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"ticket_id": ticketID,
			"user_id":   claimerID,
		}).Error("notifier: mark ticket notifications read failed")
		return 0
	}
	return marked
}

func (n *Notifier) TicketAssigned(ctx context.Context, ticket entity.Ticket, assignee entity.User, actorID uint) int {
	if assignee.ID == actorID {
		return 0
	}
	return n.fanOut(ctx, ticket, []uint{assignee.ID},
		fmt.Sprintf("Chamado atribuído: %s", ticket.Title),
		fmt.Sprintf("O chamado #%d foi atribuído a você", ticket.ID),
		entity.NotificationAssignment)
}

func (n *Notifier) TicketClosed(ctx context.Context, ticket entity.Ticket, closer entity.User) int {
	if ticket.RequesterID == closer.ID {
		return 0
	}
	return n.fanOut(ctx, ticket, []uint{ticket.RequesterID},
		fmt.Sprintf("Chamado finalizado: %s", ticket.Title),
		fmt.Sprintf("Seu chamado foi finalizado por %s", closer.Name),
		entity.NotificationClosed)
}

func (n *Notifier) fanOut(ctx context.Context, ticket entity.Ticket, recipients []uint, title, message, kind string) int {
	if len(recipients) == 0 {
		return 0
	}
	ticketID := ticket.ID
	rows := make([]entity.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, entity.Notification{
			Title:    title,
			Message:  message,
			Type:     kind,
			UserID:   id,
			TicketID: &ticketID,
		})
	}

	if err := n.repo.CreateBatch(ctx, rows); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"ticket_id":  ticket.ID,
			"type":       kind,
			"recipients": len(recipients),
		}).Error("notifier: create notifications failed")
		return 0
	}
	metrics.NotificationsCreated.WithLabelValues(kind).Add(float64(len(rows)))

	for i := range rows {
		n.publish(ctx, rows[i])
	}
	return len(rows)
}

func (n *Notifier) publish(ctx context.Context, row entity.Notification) {
	if n.publisher == nil || n.subject == "" {
		return
	}
	err := n.publisher.PublishJSON(ctx, n.subject, row, "notification-"+strconv.FormatUint(uint64(row.ID), 10))
	if err != nil {
		n.log.WithError(err).WithField("notification_id", row.ID).Warn("notifier: publish failed")
	}
}

func (n *Notifier) List(ctx context.Context, userID uint, unreadOnly bool, limit int, cursor string) ([]entity.Notification, string, error) {
	rows, err := n.repo.ListCursor(ctx, userID, unreadOnly, limit, cursor)
	if err != nil {
		if !errors.Is(err, repository.ErrInvalidCursor) {
			n.log.WithError(err).Error("list notifications failed")
		}
		return nil, "", err
	}
	next := ""
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.Next(len(rows), limit, last.CreatedAt, last.ID)
	}
	return rows, next, nil
}

func (n *Notifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := n.repo.CountUnread(ctx, userID)
	if err != nil {
		n.log.WithError(err).Error("count unread notifications failed")
		return 0, err
	}
	return count, nil
}

func (n *Notifier) MarkRead(ctx context.Context, userID, id uint) error {
	if err := n.repo.MarkRead(ctx, userID, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			n.log.WithError(err).Error("mark notification read failed")
		}
		return err
	}
	return nil
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	marked, err := n.repo.MarkAllRead(ctx, userID)
	if err != nil {
		n.log.WithError(err).Error("mark all notifications read failed")
		return 0, err
	}
	return marked, nil
}

func recipientIDs(users []entity.User) []uint {
	out := make([]uint, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
