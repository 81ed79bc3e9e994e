package persistence

import "github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"

// AllModels lists every table the service owns, in dependency order.
func AllModels() []any {
	return []any{
		&entity.Company{},
		&entity.User{},
		&entity.Session{},
		&entity.Ticket{},
		&entity.TicketReply{},
		&entity.IdempotencyKey{},
		&entity.Notification{},
		&entity.EmailConfig{},
		&entity.AuditEntry{},
	}
}
