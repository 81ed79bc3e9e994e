package persistence

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
)

type BackupRepository struct {
	db *DB
}

var _ repository.BackupSource = (*BackupRepository)(nil)

func NewBackupRepository(db *DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// Snapshot reads the business tables for the annual backup. Audit entries,
// sessions and credentials are left out.
func (r *BackupRepository) Snapshot(ctx context.Context) (map[string]any, error) {
	var (
		companies     []entity.Company
		users         []entity.User
		tickets       []entity.Ticket
		replies       []entity.TicketReply
		notifications []entity.Notification
	)
	tables := []struct {
		name string
		dest any
	}{
		{"companies", &companies},
		{"users", &users},
		{"tickets", &tickets},
		{"ticket_replies", &replies},
		{"notifications", &notifications},
	}
	out := make(map[string]any, len(tables))
	for _, t := range tables {
		if err := r.db.Read(ctx).Order("id").Find(t.dest).Error; err != nil {
			return nil, err
		}
		out[t.name] = t.dest
	}
	return out, nil
}
