package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type NewTicket struct {
	Title       string
	Description string
	Priority    string
	CompanyID   *uint
}

type TicketService interface {
	Create(ctx context.Context, actorID uint, in NewTicket, idempotencyKey, requestHash string) (entity.Ticket, bool, error)
	Get(ctx context.Context, actorID, ticketID uint) (entity.Ticket, error)
	Reply(ctx context.Context, actorID, ticketID uint, body, status string) (entity.TicketReply, error)
	Claim(ctx context.Context, actorID, ticketID uint) (entity.Ticket, error)
	Assign(ctx context.Context, actorID, ticketID, assigneeID uint) (entity.Ticket, error)
	Close(ctx context.Context, actorID, ticketID uint, message string) (entity.Ticket, error)
	Delete(ctx context.Context, actorID, ticketID uint) error
}
