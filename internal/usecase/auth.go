package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	activity service.ActivityLogger
	ttl      time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

var _ service.AuthService = (*Auth)(nil)

func NewAuth(users repository.UserRepository, sessions repository.SessionRepository, activity service.ActivityLogger, ttl time.Duration, log *logrus.Logger) *Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{
		users:    users,
		sessions: sessions,
		activity: activity,
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials, opens a session and records the attempt either way.
func (a *Auth) Login(ctx context.Context, email, password string) (entity.Session, entity.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			a.log.WithError(err).Error("login lookup failed")
			return entity.Session{}, entity.User{}, err
		}
		a.activity.LogLogin(ctx, nil, email, "", false, "usuário não encontrado")
		return entity.Session{}, entity.User{}, repository.ErrInvalidCredentials
	}
	if !user.Active {
		a.activity.LogLogin(ctx, nil, email, "", false, "usuário inativo")
		return entity.Session{}, entity.User{}, repository.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.activity.LogLogin(ctx, nil, email, "", false, "senha incorreta")
		return entity.Session{}, entity.User{}, repository.ErrInvalidCredentials
	}

	now := a.now()
	session := entity.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(a.ttl),
		LastSeenAt: now,
	}
	if err := a.sessions.Create(ctx, &session); err != nil {
		a.log.WithError(err).Error("create session failed")
		return entity.Session{}, entity.User{}, err
	}

	id := user.ID
	a.activity.Log(ctx, service.Activity{
		Action:      entity.ActionLoginSuccess,
		Module:      "auth",
		Description: "Login realizado com sucesso - " + user.Name,
		Actor: &service.ActorOverride{
			UserID:    &id,
			UserName:  user.Name,
			UserType:  user.Role,
			UserEmail: user.Email,
			SessionID: session.ID,
		},
	})
	return session, user, nil
}

// Logout records the logout while the session is still bound to ctx, then
// removes it.
func (a *Auth) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	a.activity.LogLogout(ctx)
	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		a.log.WithError(err).Error("delete session failed")
		return err
	}
	return nil
}
