package repository

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetActive(ctx context.Context, id string, now time.Time) (entity.Session, error)
	Touch(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time, maxAge time.Duration) (int64, error)
}

type EmailConfigRepository interface {
	Active(ctx context.Context) (entity.EmailConfig, error)
}
