package persistence

import (
	"context"
	"errors"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"gorm.io/gorm"
)

type TicketRepository struct {
	db *DB
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		return r.db.Write(txCtx).Create(ticket).Error
	})
}

// CreateIdempotent inserts ticket unless key was already used. A replay with
// the same request hash loads the original ticket into ticket and reports
// true; a different hash is a conflict.
func (r *TicketRepository) CreateIdempotent(ctx context.Context, ticket *entity.Ticket, key, requestHash string) (bool, error) {
	var alreadyExist bool
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		replayed, err := r.replay(txCtx, ticket, key, requestHash)
		if err != nil || replayed {
			alreadyExist = replayed
			return err
		}

		if err := r.db.Write(txCtx).Create(ticket).Error; err != nil {
			return err
		}

		keyRow := entity.IdempotencyKey{
			Key:         key,
			RequestHash: requestHash,
			TicketID:    ticket.ID,
		}
		if err := r.db.Write(txCtx).Create(&keyRow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repository.ErrIdempotencyKeyConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return alreadyExist, nil
}

func (r *TicketRepository) replay(ctx context.Context, ticket *entity.Ticket, key, requestHash string) (bool, error) {
	var existing entity.IdempotencyKey
	err := r.db.Write(ctx).First(&existing, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if existing.RequestHash != requestHash {
		return false, repository.ErrIdempotencyKeyConflict
	}
	if err := r.db.Write(ctx).First(ticket, "id = ?", existing.TicketID).Error; err != nil {
		return false, notFound(err)
	}
	return true, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id uint) (entity.Ticket, error) {
	var ticket entity.Ticket
	if err := r.db.Read(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return entity.Ticket{}, notFound(err)
	}
	return ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *entity.Ticket, fields map[string]any) error {
	if ticket.ID == 0 {
		return repository.ErrInvalidInput
	}
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		res := r.db.Write(txCtx).Model(ticket).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return r.db.Write(txCtx).First(ticket, "id = ?", ticket.ID).Error
	})
}

// Claim assigns the ticket only while it has no assignee. It reports false
// when another user got there first.
func (r *TicketRepository) Claim(ctx context.Context, ticket *entity.Ticket, assigneeID uint) (bool, error) {
	if ticket.ID == 0 {
		return false, repository.ErrInvalidInput
	}
	var claimed bool
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		res := r.db.Write(txCtx).
			Model(ticket).
			Where("assignee_id IS NULL AND status <> ?", entity.StatusClosed).
			Updates(map[string]any{"assignee_id": assigneeID, "status": entity.StatusInProgress})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0
		return r.db.Write(txCtx).First(ticket, "id = ?", ticket.ID).Error
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// Delete removes the ticket with its replies one row at a time so every
// removal is recorded. Notifications and idempotency keys pointing at the
// ticket go with it.
func (r *TicketRepository) Delete(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.ID == 0 {
		return repository.ErrInvalidInput
	}
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		conn := r.db.Write(txCtx)
		var replies []entity.TicketReply
		if err := conn.Where("ticket_id = ?", ticket.ID).Order("id").Find(&replies).Error; err != nil {
			return err
		}
		for i := range replies {
			if err := conn.Delete(&replies[i]).Error; err != nil {
				return err
			}
		}
		if err := conn.Where("ticket_id = ?", ticket.ID).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		if err := conn.Where("ticket_id = ?", ticket.ID).Delete(&entity.IdempotencyKey{}).Error; err != nil {
			return err
		}
		res := conn.Delete(ticket)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *TicketRepository) AddReply(ctx context.Context, reply *entity.TicketReply) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		return r.db.Write(txCtx).Create(reply).Error
	})
}
