package usecase

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/sirupsen/logrus"
)

// Actor is who did something and from where. Identity fields are nil or
// empty when no active user is bound to the request.
type Actor struct {
	UserID    *uint
	UserName  string
	UserType  string
	UserEmail string
	SessionID string

	IP           string
	UserAgent    string
	Endpoint     string
	Method       string
	RequestStart time.Time
	InRequest    bool
}

type ActorResolver struct {
	users repository.UserRepository
	log   *logrus.Logger
}

func NewActorResolver(users repository.UserRepository, log *logrus.Logger) *ActorResolver {
	return &ActorResolver{users: users, log: log}
}

// Resolve never fails. Lookup errors are logged and leave identity empty.
func (r *ActorResolver) Resolve(ctx context.Context) Actor {
	var actor Actor

	if req, ok := requestctx.RequestFrom(ctx); ok {
		actor.InRequest = true
		actor.IP = req.IP
		actor.UserAgent = TruncateUserAgent(req.UserAgent)
		actor.Endpoint = req.Endpoint
		actor.Method = req.Method
		actor.RequestStart = req.Start
	}

	session, ok := requestctx.SessionFrom(ctx)
	if !ok {
		return actor
	}
	actor.SessionID = session.ID
	if session.UserID == 0 || r.users == nil {
		return actor
	}

	user, err := r.users.GetByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.log.WithError(err).WithField("user_id", session.UserID).Warn("actor resolver: user lookup failed")
		}
		return actor
	}
	if !user.Active {
		return actor
	}
	id := user.ID
	actor.UserID = &id
	actor.UserName = user.Name
	actor.UserType = user.Role
	actor.UserEmail = user.Email
	return actor
}

// TruncateUserAgent cuts ua to the stored maximum without splitting a rune.
func TruncateUserAgent(ua string) string {
	if len(ua) <= entity.MaxUserAgentLength {
		return ua
	}
	cut := entity.MaxUserAgentLength
	for cut > 0 && !utf8.RuneStart(ua[cut]) {
		cut--
	}
	return ua[:cut]
}
