package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/metrics"
	"github.com/sirupsen/logrus"
)

const (
	defaultAction = "UNKNOWN"
	defaultModule = "system"
)

type ActivityLogger struct {
	repo      repository.AuditRepository
	resolver  *ActorResolver
	publisher service.EventPublisher
	subject   string
	log       *logrus.Logger
	now       func() time.Time
}

var _ service.ActivityLogger = (*ActivityLogger)(nil)

// NewActivityLogger builds the logger. publisher may be nil.
func NewActivityLogger(repo repository.AuditRepository, resolver *ActorResolver, publisher service.EventPublisher, subject string, log *logrus.Logger) *ActivityLogger {
	return &ActivityLogger{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		subject:   subject,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (l *ActivityLogger) Log(ctx context.Context, a service.Activity) (*entity.AuditEntry, bool) {
	actor := l.resolver.Resolve(ctx)
	now := l.now()

	entry := &entity.AuditEntry{
		Timestamp:   now,
		Action:      normalizeAction(a.Action),
		Module:      normalizeModule(a.Module),
		Description: a.Description,
		EntityType:  a.EntityType,
		OldValues:   entity.EncodeDocument(a.OldValues),
		NewValues:   entity.EncodeDocument(a.NewValues),
		ExtraData:   entity.EncodeDocument(a.ExtraData),
		StatusCode:  a.StatusCode,
		Endpoint:    firstNonEmpty(a.Endpoint, actor.Endpoint),
		Method:      strings.ToUpper(firstNonEmpty(a.Method, actor.Method)),
		IPAddress:   actor.IP,
		UserAgent:   actor.UserAgent,
	}
	if a.EntityType != "" {
		entry.EntityID = a.EntityID
	}

	if a.Actor != nil {
		entry.UserID = a.Actor.UserID
		entry.UserName = a.Actor.UserName
		entry.UserType = a.Actor.UserType
		entry.UserEmail = a.Actor.UserEmail
		entry.SessionID = firstNonEmpty(a.Actor.SessionID, actor.SessionID)
	} else {
		entry.UserID = actor.UserID
		entry.UserName = actor.UserName
		entry.UserType = actor.UserType
		entry.UserEmail = actor.UserEmail
		entry.SessionID = actor.SessionID
	}

	if !actor.RequestStart.IsZero() {
		ms := float64(now.Sub(actor.RequestStart).Microseconds()) / 1000
		if ms < 0 {
			ms = 0
		}
		entry.ResponseTime = &ms
	}

	if err := l.repo.Create(ctx, entry); err != nil {
		metrics.AuditFailures.Inc()
		l.log.WithError(err).WithFields(logrus.Fields{
			"action": entry.Action,
			"module": entry.Module,
		}).Error("activity logger: write audit entry failed")
		return nil, false
	}
	metrics.AuditEntries.WithLabelValues(entry.Action).Inc()
	l.publish(ctx, entry)
	return entry, true
}

func (l *ActivityLogger) publish(ctx context.Context, entry *entity.AuditEntry) {
	if l.publisher == nil || l.subject == "" {
		return
	}
	err := l.publisher.PublishJSON(ctx, l.subject, entry, "audit-"+strconv.FormatUint(uint64(entry.ID), 10))
	if err != nil {
		l.log.WithError(err).WithField("audit_id", entry.ID).Warn("activity logger: publish failed")
	}
}

func (l *ActivityLogger) LogLogin(ctx context.Context, userID *uint, userName, userType string, success bool, reason string) (*entity.AuditEntry, bool) {
	if success {
		return l.Log(ctx, service.Activity{
			Action:      entity.ActionLoginSuccess,
			Module:      "auth",
			Description: fmt.Sprintf("Login realizado com sucesso - %s", userName),
			Actor:       &service.ActorOverride{UserID: userID, UserName: userName, UserType: userType},
		})
	}
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionLoginFailed,
		Module:      "auth",
		Description: fmt.Sprintf("Tentativa de login falhou - %s", userName),
		ExtraData:   map[string]any{"failure_reason": reason},
		Actor:       &service.ActorOverride{UserName: userName},
	})
}

func (l *ActivityLogger) LogLogout(ctx context.Context) (*entity.AuditEntry, bool) {
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionLogout,
		Module:      "auth",
		Description: "Logout realizado",
	})
}

func (l *ActivityLogger) LogCreate(ctx context.Context, module, entityType string, entityID uint, description string, newValues any) (*entity.AuditEntry, bool) {
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionCreate,
		Module:      module,
		Description: description,
		EntityType:  entityType,
		EntityID:    &entityID,
		NewValues:   newValues,
	})
}

func (l *ActivityLogger) LogUpdate(ctx context.Context, module, entityType string, entityID uint, description string, oldValues, newValues any) (*entity.AuditEntry, bool) {
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionUpdate,
		Module:      module,
		Description: description,
		EntityType:  entityType,
		EntityID:    &entityID,
		OldValues:   oldValues,
		NewValues:   newValues,
	})
}

func (l *ActivityLogger) LogDelete(ctx context.Context, module, entityType string, entityID uint, description string, oldValues any) (*entity.AuditEntry, bool) {
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionDelete,
		Module:      module,
		Description: description,
		EntityType:  entityType,
		EntityID:    &entityID,
		OldValues:   oldValues,
	})
}

// LogView records an access. An empty description becomes
// "Acessou {module}", with the entity appended when known.
func (l *ActivityLogger) LogView(ctx context.Context, module, entityType string, entityID *uint, description string) (*entity.AuditEntry, bool) {
	if description == "" {
		description = "Acessou " + module
		if entityType != "" && entityID != nil {
			description += fmt.Sprintf(" - %s ID %d", entityType, *entityID)
		}
	}
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionView,
		Module:      module,
		Description: description,
		EntityType:  entityType,
		EntityID:    entityID,
	})
}

func (l *ActivityLogger) LogExport(ctx context.Context, module, description string, extra any) (*entity.AuditEntry, bool) {
	return l.Log(ctx, service.Activity{
		Action:      entity.ActionExport,
		Module:      module,
		Description: description,
		ExtraData:   extra,
	})
}

func normalizeAction(action string) string {
	action = strings.ToUpper(strings.TrimSpace(action))
	if action == "" {
		return defaultAction
	}
	return action
}

func normalizeModule(module string) string {
	module = strings.ToLower(strings.TrimSpace(module))
	if module == "" {
		return defaultModule
	}
	return module
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
