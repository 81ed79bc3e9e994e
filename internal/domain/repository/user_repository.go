package repository

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	Update(ctx context.Context, user *entity.User, fields map[string]any) error
	ListActiveByRoles(ctx context.Context, roles []string, excludeID uint) ([]entity.User, error)
	ListCursor(ctx context.Context, limit int, cursor string) ([]entity.User, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id uint) (entity.Company, error)
	Update(ctx context.Context, company *entity.Company, fields map[string]any) error
	ListActive(ctx context.Context) ([]entity.Company, error)
}
