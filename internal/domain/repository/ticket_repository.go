package repository

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	CreateIdempotent(ctx context.Context, ticket *entity.Ticket, key, requestHash string) (bool, error)
	GetByID(ctx context.Context, id uint) (entity.Ticket, error)
	Update(ctx context.Context, ticket *entity.Ticket, fields map[string]any) error
	Claim(ctx context.Context, ticket *entity.Ticket, assigneeID uint) (bool, error)
	AddReply(ctx context.Context, reply *entity.TicketReply) error
	Delete(ctx context.Context, ticket *entity.Ticket) error
}
