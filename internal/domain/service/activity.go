package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

// Activity describes one event to record. Fields left empty are filled from
// the request and session bound to the context.
type Activity struct {
	Action      string
	Module      string
	Description string
	EntityType  string
	EntityID    *uint
	OldValues   any
	NewValues   any
	ExtraData   any
	StatusCode  *int
	Endpoint    string
	Method      string

	// Actor replaces the resolved identity when set. A nil UserID inside a
	// non-nil Actor records the entry with no user.
	Actor *ActorOverride
}

type ActorOverride struct {
	UserID    *uint
	UserName  string
	UserType  string
	UserEmail string
	SessionID string
}

// ActivityLogger writes audit entries. It never returns an error: a failed
// write yields (nil, false) and is reported on the diagnostic log.
type ActivityLogger interface {
	Log(ctx context.Context, activity Activity) (*entity.AuditEntry, bool)
	LogLogin(ctx context.Context, userID *uint, userName, userType string, success bool, reason string) (*entity.AuditEntry, bool)
	LogLogout(ctx context.Context) (*entity.AuditEntry, bool)
	LogCreate(ctx context.Context, module, entityType string, entityID uint, description string, newValues any) (*entity.AuditEntry, bool)
	LogUpdate(ctx context.Context, module, entityType string, entityID uint, description string, oldValues, newValues any) (*entity.AuditEntry, bool)
	LogDelete(ctx context.Context, module, entityType string, entityID uint, description string, oldValues any) (*entity.AuditEntry, bool)
	LogView(ctx context.Context, module, entityType string, entityID *uint, description string) (*entity.AuditEntry, bool)
	LogExport(ctx context.Context, module, description string, extra any) (*entity.AuditEntry, bool)
}

// EventPublisher carries best-effort events. msgID lets the broker drop
// duplicates.
type EventPublisher interface {
	PublishJSON(ctx context.Context, subject string, v any, msgID string) error
}
