package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	tplCreatedClient = "ticket_created_client"
	tplCreatedStaff  = "ticket_created_staff"
	tplAssigned      = "ticket_assigned"
)

// brt is the fixed display zone used in email bodies.
var brt = time.FixedZone("BRT", -3*60*60)

const displayLayout = "02/01/2006 às 15:04"

type ticketView struct {
	ID             uint
	Title          string
	Description    string
	PriorityLabel  string
	PriorityUpper  string
	PriorityColor  string
	StatusLabel    string
	OpenedAt       string
	SentAt         string
	ClientName     string
	ClientEmail    string
	Company        string
	TechnicianName string
}

// TicketMailer renders the ticket templates and sends them through a Dispatcher.
type TicketMailer struct {
	dispatcher *Dispatcher
}

var _ service.TicketMailer = (*TicketMailer)(nil)

func NewTicketMailer(dispatcher *Dispatcher) *TicketMailer {
	return &TicketMailer{dispatcher: dispatcher}
}

func (m *TicketMailer) TicketCreatedToClient(ctx context.Context, ticket entity.Ticket, client entity.User) bool {
	view := m.view(ticket, client, nil)
	return m.send(ctx, tplCreatedClient, []string{client.Email},
		fmt.Sprintf("Chamado #%d Criado - %s", ticket.ID, ticket.Title), view)
}

func (m *TicketMailer) TicketCreatedToStaff(ctx context.Context, ticket entity.Ticket, client entity.User, company *entity.Company, staff []entity.User) bool {
	emails := make([]string, 0, len(staff))
	for _, u := range staff {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	if len(emails) == 0 {
		return false
	}
	view := m.view(ticket, client, company)
	return m.send(ctx, tplCreatedStaff, emails,
		fmt.Sprintf("Novo Chamado #%d - %s", ticket.ID, ticket.Title), view)
}

func (m *TicketMailer) TicketAssignedToTechnician(ctx context.Context, ticket entity.Ticket, technician, client entity.User, company *entity.Company) bool {
	view := m.view(ticket, client, company)
	view.TechnicianName = technician.Name
	return m.send(ctx, tplAssigned, []string{technician.Email},
		fmt.Sprintf("Chamado #%d Atribuído a Você", ticket.ID), view)
}

func (m *TicketMailer) send(ctx context.Context, name string, to []string, subject string, view ticketView) bool {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".html", view); err != nil {
		m.dispatcher.log.WithError(err).WithField("template", name).Error("mail: render template failed")
		return false
	}
	return m.dispatcher.send(ctx, name, to, subject, buf.String(), "")
}

func (m *TicketMailer) view(ticket entity.Ticket, client entity.User, company *entity.Company) ticketView {
	companyName := "N/A"
	if company != nil && company.Name != "" {
		companyName = company.Name
	}
	return ticketView{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Description:   ticket.Description,
		PriorityLabel: titleWords(ticket.Priority),
		PriorityUpper: strings.ToUpper(ticket.Priority),
		PriorityColor: priorityColor(ticket.Priority),
		StatusLabel:   titleWords(strings.ReplaceAll(ticket.Status, "_", " ")),
		OpenedAt:      ticket.CreatedAt.In(brt).Format(displayLayout),
		SentAt:        m.dispatcher.now().In(brt).Format(displayLayout),
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		Company:       companyName,
	}
}

func priorityColor(p string) string {
	switch p {
	case entity.PriorityHigh:
		return "#d73027"
	case entity.PriorityMedium:
		return "#f57c00"
	}
	return "#388e3c"
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
