package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence/persistencetest"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) TicketCreatedToClient(ctx context.Context, ticket entity.Ticket, client entity.User) bool {
	return m.Called(ticket.ID, client.ID).Bool(0)
}

func (m *mailerMock) TicketCreatedToStaff(ctx context.Context, ticket entity.Ticket, client entity.User, company *entity.Company, staff []entity.User) bool {
	return m.Called(ticket.ID, len(staff)).Bool(0)
}

func (m *mailerMock) TicketAssignedToTechnician(ctx context.Context, ticket entity.Ticket, technician, client entity.User, company *entity.Company) bool {
	return m.Called(ticket.ID, technician.ID).Bool(0)
}

type env struct {
	db            *persistence.DB
	users         *persistence.UserRepository
	sessions      *persistence.SessionRepository
	audit         *persistence.AuditRepository
	notifications *persistence.NotificationRepository
	tickets       *persistence.TicketRepository
	companies     *persistence.CompanyRepository

	activity *ActivityLogger
	capture  *ChangeCapture
	notifier *Notifier
	mailer   *mailerMock
	ticketUC *Tickets
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newEnv wires the use cases over an in-memory database the same way the
// container does, with a mocked mailer.
func newEnv(t *testing.T) *env {
	t.Helper()
	log := quietLogger()
	db := persistencetest.Open(t)

	e := &env{
		db:            db,
		users:         persistence.NewUserRepository(db),
		sessions:      persistence.NewSessionRepository(db),
		audit:         persistence.NewAuditRepository(db),
		notifications: persistence.NewNotificationRepository(db),
		tickets:       persistence.NewTicketRepository(db),
		companies:     persistence.NewCompanyRepository(db),
		mailer:        &mailerMock{},
	}
	e.activity = NewActivityLogger(e.audit, NewActorResolver(e.users, log), nil, "", log)
	e.capture = NewChangeCapture(e.activity, log)
	e.capture.RegisterDefaults()
	e.capture.Install(db)
	e.notifier = NewNotifier(e.notifications, e.users, nil, "", log)
	e.ticketUC = NewTickets(db, e.tickets, e.users, e.companies, e.notifier, e.mailer, e.activity, log)
	return e
}

func (e *env) user(t *testing.T, name, email, role string, active bool) entity.User {
	t.Helper()
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	u := entity.User{Name: name, Email: email, Role: role, Active: active, PasswordHash: hash}
	require.NoError(t, e.users.Create(context.Background(), &u))
	return u
}

func (e *env) entries(t *testing.T) []entity.AuditEntry {
	t.Helper()
	var out []entity.AuditEntry
	require.NoError(t, e.db.Conn.Order("id").Find(&out).Error)
	return out
}

func (e *env) entriesWith(t *testing.T, action string) []entity.AuditEntry {
	t.Helper()
	var out []entity.AuditEntry
	for _, entry := range e.entries(t) {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

func (e *env) notificationsFor(t *testing.T, userID uint) []entity.Notification {
	t.Helper()
	var out []entity.Notification
	require.NoError(t, e.db.Conn.Where("user_id = ?", userID).Order("id").Find(&out).Error)
	return out
}

// inRequest binds a request, and a session for userID when non-zero.
func inRequest(userID uint) context.Context {
	ctx := requestctx.WithRequest(context.Background(), requestctx.Request{
		ID:        "req-1",
		Start:     time.Now().UTC(),
		IP:        "10.0.0.7",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/126.0",
		Endpoint:  "/api/tickets",
		Method:    "POST",
		Path:      "/api/tickets",
	})
	if userID == 0 {
		return ctx
	}
	return requestctx.WithSession(ctx, requestctx.Session{ID: "sess-1", UserID: userID})
}

func retentionConfig(dir string) config.Retention {
	return config.Retention{
		Days:         90,
		CriticalDays: 180,
		BatchSize:    2,
		BackupDir:    dir,
		AnnualBackup: true,
	}
}
