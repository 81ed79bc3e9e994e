package bootstrap

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/mail"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/messaging"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/worker"
	"github.com/sirupsen/logrus"
)

// Container holds the wired application graph shared by the commands.
type Container struct {
	Config config.Config
	Log    *logrus.Logger
	DB     *persistence.DB
	NATS   *messaging.NATSClient

	Users         *persistence.UserRepository
	Sessions      *persistence.SessionRepository
	AuditRepo     *persistence.AuditRepository
	Notifications *persistence.NotificationRepository

	Activity  *usecase.ActivityLogger
	Capture   *usecase.ChangeCapture
	Notifier  *usecase.Notifier
	Tickets   *usecase.Tickets
	UserUC    *usecase.User
	Companies *usecase.Companies
	Auth      *usecase.Auth
	Audit     *usecase.AuditQuery
	Retention *usecase.Retention
	Scheduler *worker.Scheduler
}

func NewContainer(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Container, error) {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	nc, err := messaging.NewNATS(ctx, cfg.NATS)
	if err != nil {
		log.WithError(err).Warn("bootstrap: nats unavailable, events disabled")
		nc = nil
	}

	c := &Container{Config: cfg, Log: log, DB: db, NATS: nc}
	c.wire()
	return c, nil
}

func (c *Container) wire() {
	cfg, log, db := c.Config, c.Log, c.DB

	c.Users = persistence.NewUserRepository(db)
	c.Sessions = persistence.NewSessionRepository(db)
	c.AuditRepo = persistence.NewAuditRepository(db)
	c.Notifications = persistence.NewNotificationRepository(db)
	tickets := persistence.NewTicketRepository(db)
	companies := persistence.NewCompanyRepository(db)

	resolver := usecase.NewActorResolver(c.Users, log)
	c.Activity = usecase.NewActivityLogger(c.AuditRepo, resolver, c.NATS, cfg.NATS.AuditSubject, log)

	c.Capture = usecase.NewChangeCapture(c.Activity, log)
	c.Capture.RegisterDefaults()
	c.Capture.Install(db)

	c.Notifier = usecase.NewNotifier(c.Notifications, c.Users, c.NATS, cfg.NATS.NotificationSubject, log)
	dispatcher := mail.NewDispatcher(persistence.NewEmailConfigRepository(db), cfg.Mail, log)
	mailer := mail.NewTicketMailer(dispatcher)

	c.Tickets = usecase.NewTickets(db, tickets, c.Users, companies, c.Notifier, mailer, c.Activity, log)
	c.UserUC = usecase.NewUser(c.Users, log)
	c.Companies = usecase.NewCompanies(companies, log)
	c.Auth = usecase.NewAuth(c.Users, c.Sessions, c.Activity, cfg.Session.TTL, log)
	c.Audit = usecase.NewAuditQuery(c.AuditRepo, c.Activity, cfg.Audit, log)

	c.Retention = usecase.NewRetention(
		c.AuditRepo,
		c.Sessions,
		c.Notifications,
		persistence.NewBackupRepository(db),
		c.Activity,
		cfg.Retention,
		cfg.Notifications,
		log,
	)
	c.Scheduler = worker.NewScheduler(c.Retention, cfg.Retention.CheckInterval, cfg.Retention.DailyHour, log)
}

func (c *Container) Close() {
	c.NATS.Close()
	c.DB.Close()
}
