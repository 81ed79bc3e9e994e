package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/sirupsen/logrus"
)

// Descriptor tells change capture how to describe rows of one table.
type Descriptor struct {
	EntityType    string
	Module        string
	DisplayName   func(row any) string
	ExcludeFields []string
}

// DefaultExcludedFields never reach an audit snapshot.
var DefaultExcludedFields = []string{"password_hash", "created_at", "updated_at"}

var changeVerbs = map[repository.ChangeKind]string{
	repository.ChangeCreate: "Criou",
	repository.ChangeUpdate: "Atualizou",
	repository.ChangeDelete: "Deletou",
}

// ChangeCapture turns committed row mutations on registered tables into
// audit entries. Entries are staged before commit and written only after the
// transaction commits.
type ChangeCapture struct {
	mu       sync.RWMutex
	registry map[string]Descriptor
	logger   service.ActivityLogger
	log      *logrus.Logger
}

func NewChangeCapture(logger service.ActivityLogger, log *logrus.Logger) *ChangeCapture {
	return &ChangeCapture{
		registry: map[string]Descriptor{},
		logger:   logger,
		log:      log,
	}
}

// DisplayBy adapts a typed name function to a Descriptor.DisplayName.
func DisplayBy[T any](name func(*T) string) func(any) string {
	return func(row any) string {
		switch v := row.(type) {
		case *T:
			if v != nil {
				return name(v)
			}
		case T:
			return name(&v)
		}
		return ""
	}
}

// RegisterDefaults registers the helpdesk tables.
func (c *ChangeCapture) RegisterDefaults() {
	defaults := map[string]Descriptor{
		"users": {
			EntityType:  "Usuario",
			Module:      "usuarios",
			DisplayName: DisplayBy(func(u *entity.User) string { return firstNonEmpty(u.Name, u.Email) }),
		},
		"companies": {
			EntityType:  "Empresa",
			Module:      "empresas",
			DisplayName: DisplayBy(func(e *entity.Company) string { return e.Name }),
		},
		"tickets": {
			EntityType:  "Chamado",
			Module:      "chamados",
			DisplayName: DisplayBy(func(t *entity.Ticket) string { return t.Title }),
		},
		"ticket_replies": {
			EntityType: "RespostaChamado",
			Module:     "chamados",
		},
	}
	for table, d := range defaults {
		_ = c.Register(table, d)
	}
}

func (c *ChangeCapture) Register(table string, d Descriptor) error {
	if table == "" || table == (entity.AuditEntry{}).TableName() {
		return repository.ErrUntrackable
	}
	if d.EntityType == "" {
		return repository.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry[table] = d
	return nil
}

func (c *ChangeCapture) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.registry))
	for t := range c.registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Install tracks every registered table on tracker and hooks the commit path.
func (c *ChangeCapture) Install(tracker repository.ChangeTracker) {
	tracker.Track(c.Tables()...)
	tracker.OnBeforeCommit(c.BeforeCommit)
}

func (c *ChangeCapture) descriptor(table string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.registry[table]
	return d, ok
}

// BeforeCommit stages one activity per change. Outside an HTTP request it
// does nothing.
func (c *ChangeCapture) BeforeCommit(ctx context.Context, uow repository.UnitOfWork) {
	if !requestctx.InRequest(ctx) {
		return
	}

	var staged []service.Activity
	for _, change := range uow.Changes() {
		d, ok := c.descriptor(change.Table)
		if !ok {
			continue
		}
		activity, ok := c.stage(change, d)
		if ok {
			staged = append(staged, activity)
		}
	}
	if len(staged) == 0 {
		return
	}

	uow.AfterCommit(func(ctx context.Context) {
		for _, a := range staged {
			if _, ok := c.logger.Log(ctx, a); !ok {
				c.log.WithFields(logrus.Fields{
					"action":      a.Action,
					"entity_type": a.EntityType,
				}).Warn("change capture: flush failed")
			}
		}
	})
	uow.AfterRollback(func() {
		c.log.WithField("discarded", len(staged)).Debug("change capture: transaction rolled back")
		staged = nil
	})
}

func (c *ChangeCapture) stage(change repository.Change, d Descriptor) (service.Activity, bool) {
	verb, ok := changeVerbs[change.Kind]
	if !ok {
		return service.Activity{}, false
	}

	row := change.After
	if change.Kind == repository.ChangeDelete {
		row = change.Before
	}

	activity := service.Activity{
		Action:      string(change.Kind),
		Module:      d.Module,
		EntityType:  d.EntityType,
		EntityID:    primaryKeyID(change.PrimaryKey),
		Description: fmt.Sprintf("%s %s '%s'", verb, d.EntityType, displayName(d, row, change.PrimaryKey)),
	}

	exclude := append(append([]string(nil), DefaultExcludedFields...), d.ExcludeFields...)
	switch change.Kind {
	case repository.ChangeCreate:
		activity.NewValues = snapshot(change.After, exclude)
	case repository.ChangeDelete:
		activity.OldValues = snapshot(change.Before, exclude)
	case repository.ChangeUpdate:
		before := snapshot(change.Before, exclude)
		after := snapshot(change.After, exclude)
		changed := changedFields(before, after)
		if len(changed) == 0 {
			return service.Activity{}, false
		}
		activity.OldValues = before
		activity.NewValues = after
		activity.ExtraData = map[string]any{"changed_fields": changed}
	}
	return activity, true
}

func displayName(d Descriptor, row, pk any) string {
	if d.DisplayName != nil {
		if name := d.DisplayName(row); name != "" {
			return name
		}
	}
	if pk != nil {
		if s := fmt.Sprint(pk); s != "" && s != "0" {
			return "ID " + s
		}
	}
	return "Unknown"
}

// snapshot flattens row to its JSON fields minus exclude. A row that cannot
// be encoded yields an error document instead.
func snapshot(row any, exclude []string) map[string]any {
	if row == nil {
		return nil
	}
	data, err := json.Marshal(row)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("could not serialize: %v", err)}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"error": fmt.Sprintf("could not serialize: %v", err)}
	}
	for _, f := range exclude {
		delete(out, f)
	}
	return out
}

func changedFields(before, after map[string]any) []string {
	var out []string
	seen := map[string]struct{}{}
	for k, v := range after {
		seen[k] = struct{}{}
		if !reflect.DeepEqual(before[k], v) {
			out = append(out, k)
		}
	}
	for k := range before {
		if _, ok := seen[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func primaryKeyID(pk any) *uint {
	rv := reflect.ValueOf(pk)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		id := uint(rv.Uint())
		return &id
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() <= 0 {
			return nil
		}
		id := uint(rv.Int())
		return &id
	}
	return nil
}
