package persistence

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
)

type SessionRepository struct {
	db *DB
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	return r.db.Write(ctx).Create(session).Error
}

func (r *SessionRepository) GetActive(ctx context.Context, id string, now time.Time) (entity.Session, error) {
	var session entity.Session
	err := r.db.Read(ctx).First(&session, "id = ? AND expires_at > ?", id, now).Error
	if err != nil {
		return entity.Session{}, notFound(err)
	}
	return session, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, now time.Time) error {
	return r.db.Write(ctx).Model(&entity.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", now).Error
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Write(ctx).Delete(&entity.Session{}, "id = ?", id).Error
}

// DeleteExpired removes sessions past their expiry or idle for longer than maxAge.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time, maxAge time.Duration) (int64, error) {
	query := r.db.Write(ctx)
	if maxAge > 0 {
		query = query.Where("(expires_at <= ? OR last_seen_at < ?)", now, now.Add(-maxAge))
	} else {
		query = query.Where("expires_at <= ?", now)
	}
	res := query.Delete(&entity.Session{})
	return res.RowsAffected, res.Error
}

type EmailConfigRepository struct {
	db *DB
}

var _ repository.EmailConfigRepository = (*EmailConfigRepository)(nil)

func NewEmailConfigRepository(db *DB) *EmailConfigRepository {
	return &EmailConfigRepository{db: db}
}

// Active returns the most recently updated active configuration.
func (r *EmailConfigRepository) Active(ctx context.Context) (entity.EmailConfig, error) {
	var cfg entity.EmailConfig
	err := r.db.Read(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		Order("id DESC").
		First(&cfg).Error
	if err != nil {
		return entity.EmailConfig{}, notFound(err)
	}
	return cfg, nil
}
