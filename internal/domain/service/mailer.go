package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

// TicketMailer sends the ticket emails. Every method reports delivery as a
// bool and never fails the caller.
type TicketMailer interface {
	TicketCreatedToClient(ctx context.Context, ticket entity.Ticket, client entity.User) bool
	TicketCreatedToStaff(ctx context.Context, ticket entity.Ticket, client entity.User, company *entity.Company, staff []entity.User) bool
	TicketAssignedToTechnician(ctx context.Context, ticket entity.Ticket, technician, client entity.User, company *entity.Company) bool
}
