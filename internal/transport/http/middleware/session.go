package middleware

import (
	"errors"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SessionHeader  = "X-Session-ID"
	CurrentUserKey = "current_user"
)

// Session resolves the session id from the header or cookie. An unknown or
// expired id leaves the request anonymous.
func Session(sessions repository.SessionRepository, users repository.UserRepository, cookieName string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionID(c, cookieName)
		if id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := time.Now().UTC()
		s, err := sessions.GetActive(ctx, id, now)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.WithError(err).Warn("session: lookup failed")
			}
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(requestctx.WithSession(ctx, requestctx.Session{ID: s.ID, UserID: s.UserID}))
		if user, err := users.GetByID(ctx, s.UserID); err == nil && user.Active {
			c.Set(CurrentUserKey, user)
		}
		if err := sessions.Touch(ctx, s.ID, now); err != nil {
			log.WithError(err).Warn("session: touch failed")
		}
		c.Next()
	}
}

func SessionID(c *gin.Context, cookieName string) string {
	if id := c.GetHeader(SessionHeader); id != "" {
		return id
	}
	if cookieName == "" {
		return ""
	}
	id, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return id
}

// CurrentUser returns the active user bound by Session.
func CurrentUser(c *gin.Context) (entity.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return entity.User{}, false
	}
	user, ok := v.(entity.User)
	return user, ok
}
