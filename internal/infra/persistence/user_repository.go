package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		return r.db.Write(txCtx).Create(user).Error
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (entity.User, error) {
	var user entity.User
	if err := r.db.Read(ctx).First(&user, "id = ?", id).Error; err != nil {
		return entity.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var user entity.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.Read(ctx).First(&user, "email = ?", email).Error; err != nil {
		return entity.User{}, notFound(err)
	}
	return user, nil
}

// Update applies fields to a loaded user so the change is captured with its
// primary key. The struct is refreshed with the stored row.
func (r *UserRepository) Update(ctx context.Context, user *entity.User, fields map[string]any) error {
	if user.ID == 0 {
		return repository.ErrInvalidInput
	}
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		res := r.db.Write(txCtx).Model(user).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return r.db.Write(txCtx).First(user, "id = ?", user.ID).Error
	})
}

// ListActiveByRoles returns active users holding any of roles, ordered by id.
// excludeID of zero excludes nobody.
func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles []string, excludeID uint) ([]entity.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	query := r.db.Read(ctx).Where("active = ? AND role IN ?", true, roles)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var users []entity.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListCursor(ctx context.Context, limit int, cursor string) ([]entity.User, error) {
	var users []entity.User
	if limit <= 0 {
		limit = 50
	}

	query := r.db.Read(ctx).
		Limit(limit).
		Order("created_at DESC").
		Order("id DESC")

	if cursor != "" {
		cursorTime, cursorID, err := pagination.Decode(cursor)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, repository.ErrInvalidCursor
			}
			return nil, err
		}
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursorTime, cursorTime, cursorID)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

type CompanyRepository struct {
	db *DB
}

var _ repository.CompanyRepository = (*CompanyRepository)(nil)

func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		return duplicate(r.db.Write(txCtx).Create(company).Error)
	})
}

// Update applies fields to a loaded company and refreshes it from the row.
func (r *CompanyRepository) Update(ctx context.Context, company *entity.Company, fields map[string]any) error {
	if company.ID == 0 {
		return repository.ErrInvalidInput
	}
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		res := r.db.Write(txCtx).Model(company).Updates(fields)
		if res.Error != nil {
			return duplicate(res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return r.db.Write(txCtx).First(company, "id = ?", company.ID).Error
	})
}

func (r *CompanyRepository) ListActive(ctx context.Context) ([]entity.Company, error) {
	var companies []entity.Company
	if err := r.db.Read(ctx).Where("active = ?", true).Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uint) (entity.Company, error) {
	var company entity.Company
	if err := r.db.Read(ctx).First(&company, "id = ?", id).Error; err != nil {
		return entity.Company{}, notFound(err)
	}
	return company, nil
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrAlreadyExists
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
