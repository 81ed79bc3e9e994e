package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/sirupsen/logrus"
)

const closingReplyPrefix = "CHAMADO FINALIZADO: "

type Tickets struct {
	store     repository.Store
	tickets   repository.TicketRepository
	users     repository.UserRepository
	companies repository.CompanyRepository
	notifier  service.Notifier
	mailer    service.TicketMailer
	activity  service.ActivityLogger
	log       *logrus.Logger
	now       func() time.Time
}

var _ service.TicketService = (*Tickets)(nil)

func NewTickets(
	store repository.Store,
	tickets repository.TicketRepository,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	notifier service.Notifier,
	mailer service.TicketMailer,
	activity service.ActivityLogger,
	log *logrus.Logger,
) *Tickets {
	return &Tickets{
		store:     store,
		tickets:   tickets,
		users:     users,
		companies: companies,
		notifier:  notifier,
		mailer:    mailer,
		activity:  activity,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a ticket for actorID. With an idempotency key, a replay of the
// same request returns the original ticket and true without repeating side
// effects. Notification and mail failures never fail the call.
func (t *Tickets) Create(ctx context.Context, actorID uint, in service.NewTicket, idempotencyKey, requestHash string) (entity.Ticket, bool, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = entity.PriorityMedium
	}
	if in.Title == "" || in.Description == "" || !entity.ValidPriority(in.Priority) {
		return entity.Ticket{}, false, repository.ErrInvalidInput
	}

	requester, err := t.activeUser(ctx, actorID)
	if err != nil {
		return entity.Ticket{}, false, err
	}

	ticket := entity.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      entity.StatusOpen,
		RequesterID: requester.ID,
		CompanyID:   in.CompanyID,
	}
	if ticket.CompanyID == nil {
		ticket.CompanyID = requester.CompanyID
	}

	alreadyExist := false
	if idempotencyKey == "" {
		err = t.tickets.Create(ctx, &ticket)
	} else {
		alreadyExist, err = t.tickets.CreateIdempotent(ctx, &ticket, idempotencyKey, requestHash)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrIdempotencyKeyConflict) {
			t.log.WithError(err).Error("create ticket failed")
		}
		return entity.Ticket{}, false, err
	}
	if alreadyExist {
		return ticket, true, nil
	}

	t.notifier.TicketOpened(ctx, ticket, requester)

	company := t.companyOf(ctx, ticket)
	if !t.mailer.TicketCreatedToClient(ctx, ticket, requester) {
		t.log.WithField("ticket_id", ticket.ID).Warn("tickets: client confirmation email not sent")
	}
	staff, err := t.users.ListActiveByRoles(ctx, entity.StaffRoles, 0)
	if err != nil {
		t.log.WithError(err).Warn("tickets: list staff for alert email failed")
	} else if len(staff) > 0 && !t.mailer.TicketCreatedToStaff(ctx, ticket, requester, company, staff) {
		t.log.WithField("ticket_id", ticket.ID).Warn("tickets: staff alert email not sent")
	}
	return ticket, false, nil
}

func (t *Tickets) Get(ctx context.Context, actorID, ticketID uint) (entity.Ticket, error) {
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return entity.Ticket{}, err
	}
	if !canAccess(actor, ticket) {
		return entity.Ticket{}, repository.ErrForbidden
	}
	id := ticket.ID
	t.activity.LogView(ctx, "chamados", "Chamado", &id, "")
	return ticket, nil
}

// Reply adds a reply. Staff may also move the status; a technician replying
// to an unassigned ticket takes it.
func (t *Tickets) Reply(ctx context.Context, actorID, ticketID uint, body, status string) (entity.TicketReply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return entity.TicketReply{}, repository.ErrInvalidInput
	}
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return entity.TicketReply{}, err
	}
	if !canAccess(actor, ticket) {
		return entity.TicketReply{}, repository.ErrForbidden
	}
	if status != "" {
		if !actor.IsStaff() {
			return entity.TicketReply{}, repository.ErrForbidden
		}
		if !entity.ValidStatus(status) {
			return entity.TicketReply{}, repository.ErrInvalidInput
		}
	}
	if ticket.Status == entity.StatusClosed && (status == "" || status == entity.StatusClosed) {
		return entity.TicketReply{}, repository.ErrTicketClosed
	}

	reply := entity.TicketReply{TicketID: ticket.ID, AuthorID: actor.ID, Body: body}
	err = t.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := t.tickets.AddReply(txCtx, &reply); err != nil {
			return err
		}
		fields := map[string]any{}
		if status != "" && status != ticket.Status {
			fields["status"] = status
			if status == entity.StatusClosed {
				fields["closed_at"] = t.now()
			} else if ticket.Status == entity.StatusClosed {
				fields["closed_at"] = nil
			}
		}
		if actor.Role == entity.RoleTechnician && ticket.AssigneeID == nil {
			fields["assignee_id"] = actor.ID
		}
		if len(fields) == 0 {
			return nil
		}
		return t.tickets.Update(txCtx, &ticket, fields)
	})
	if err != nil {
		t.log.WithError(err).Error("reply ticket failed")
		return entity.TicketReply{}, err
	}

	t.notifier.ReplyAdded(ctx, ticket, actor)
	return reply, nil
}

// Claim lets a staff member take an unassigned ticket.
func (t *Tickets) Claim(ctx context.Context, actorID, ticketID uint) (entity.Ticket, error) {
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return entity.Ticket{}, err
	}
	if !actor.IsStaff() {
		return entity.Ticket{}, repository.ErrForbidden
	}
	if ticket.Status == entity.StatusClosed {
		return entity.Ticket{}, repository.ErrTicketClosed
	}
	if ticket.AssigneeID != nil {
		return entity.Ticket{}, repository.ErrTicketAlreadyClaimed
	}

	claimed, err := t.tickets.Claim(ctx, &ticket, actor.ID)
	if err != nil {
		t.log.WithError(err).Error("claim ticket failed")
		return entity.Ticket{}, err
	}
	if !claimed {
		return entity.Ticket{}, repository.ErrTicketAlreadyClaimed
	}

	t.notifier.TicketClaimed(ctx, ticket.ID, actor.ID)
	t.sendAssignmentEmail(ctx, ticket, actor)
	return ticket, nil
}

func (t *Tickets) Assign(ctx context.Context, actorID, ticketID, assigneeID uint) (entity.Ticket, error) {
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return entity.Ticket{}, err
	}
	if actor.Role != entity.RoleAdmin {
		return entity.Ticket{}, repository.ErrForbidden
	}
	if ticket.Status == entity.StatusClosed {
		return entity.Ticket{}, repository.ErrTicketClosed
	}
	assignee, err := t.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.Ticket{}, repository.ErrInvalidInput
		}
		return entity.Ticket{}, err
	}
	if !assignee.Active || !assignee.IsStaff() {
		return entity.Ticket{}, repository.ErrInvalidInput
	}

	fields := map[string]any{"assignee_id": assignee.ID}
	if ticket.Status == entity.StatusOpen {
		fields["status"] = entity.StatusInProgress
	}
	if err := t.tickets.Update(ctx, &ticket, fields); err != nil {
		t.log.WithError(err).Error("assign ticket failed")
		return entity.Ticket{}, err
	}

	t.notifier.TicketAssigned(ctx, ticket, assignee, actor.ID)
	t.sendAssignmentEmail(ctx, ticket, assignee)
	return ticket, nil
}

// Close finalizes the ticket. A non-empty message is stored as a closing reply.
func (t *Tickets) Close(ctx context.Context, actorID, ticketID uint, message string) (entity.Ticket, error) {
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return entity.Ticket{}, err
	}
	if !actor.IsStaff() {
		return entity.Ticket{}, repository.ErrForbidden
	}
	if ticket.Status == entity.StatusClosed {
		return entity.Ticket{}, repository.ErrTicketClosed
	}

	message = strings.TrimSpace(message)
	err = t.store.WithTx(ctx, func(txCtx context.Context) error {
		fields := map[string]any{"status": entity.StatusClosed, "closed_at": t.now()}
		if err := t.tickets.Update(txCtx, &ticket, fields); err != nil {
			return err
		}
		if message == "" {
			return nil
		}
		return t.tickets.AddReply(txCtx, &entity.TicketReply{
			TicketID: ticket.ID,
			AuthorID: actor.ID,
			Body:     closingReplyPrefix + message,
		})
	})
	if err != nil {
		t.log.WithError(err).Error("close ticket failed")
		return entity.Ticket{}, err
	}

	t.notifier.TicketClosed(ctx, ticket, actor)
	return ticket, nil
}

// Delete removes a ticket and its replies. Administrators may delete any
// ticket; technicians only their own or unassigned ones.
func (t *Tickets) Delete(ctx context.Context, actorID, ticketID uint) error {
	actor, ticket, err := t.load(ctx, actorID, ticketID)
	if err != nil {
		return err
	}
	if !canDelete(actor, ticket) {
		return repository.ErrForbidden
	}
	if err := t.tickets.Delete(ctx, &ticket); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			t.log.WithError(err).WithField("ticket_id", ticket.ID).Error("delete ticket failed")
		}
		return err
	}
	return nil
}

func (t *Tickets) sendAssignmentEmail(ctx context.Context, ticket entity.Ticket, technician entity.User) {
	client, err := t.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		t.log.WithError(err).WithField("ticket_id", ticket.ID).Warn("tickets: load requester for assignment email failed")
		return
	}
	if !t.mailer.TicketAssignedToTechnician(ctx, ticket, technician, client, t.companyOf(ctx, ticket)) {
		t.log.WithField("ticket_id", ticket.ID).Warn("tickets: assignment email not sent")
	}
}

func (t *Tickets) companyOf(ctx context.Context, ticket entity.Ticket) *entity.Company {
	if ticket.CompanyID == nil || t.companies == nil {
		return nil
	}
	company, err := t.companies.GetByID(ctx, *ticket.CompanyID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			t.log.WithError(err).Warn("tickets: load company failed")
		}
		return nil
	}
	return &company
}

func (t *Tickets) load(ctx context.Context, actorID, ticketID uint) (entity.User, entity.Ticket, error) {
	actor, err := t.activeUser(ctx, actorID)
	if err != nil {
		return entity.User{}, entity.Ticket{}, err
	}
	ticket, err := t.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return entity.User{}, entity.Ticket{}, err
	}
	return actor, ticket, nil
}

func (t *Tickets) activeUser(ctx context.Context, id uint) (entity.User, error) {
	user, err := t.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.User{}, repository.ErrForbidden
		}
		return entity.User{}, err
	}
	if !user.Active {
		return entity.User{}, repository.ErrForbidden
	}
	return user, nil
}

func canDelete(user entity.User, ticket entity.Ticket) bool {
	switch user.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleTechnician:
		return ticket.AssigneeID == nil || *ticket.AssigneeID == user.ID
	default:
		return false
	}
}

// canAccess lets staff see every ticket and clients see their own tickets
// and those of their company.
func canAccess(user entity.User, ticket entity.Ticket) bool {
	if user.IsStaff() {
		return true
	}
	if ticket.RequesterID == user.ID {
		return true
	}
	return user.CompanyID != nil && ticket.CompanyID != nil && *user.CompanyID == *ticket.CompanyID
}
