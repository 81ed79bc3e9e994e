package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type NewUser struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	Role      string
	CompanyID *uint
}

type UserUpdate struct {
	Name      string
	Email     string
	Phone     string
	Role      string
	CompanyID *uint
}

type UserService interface {
	Create(ctx context.Context, in NewUser) (entity.User, error)
	GetByID(ctx context.Context, id uint) (entity.User, error)
	Update(ctx context.Context, id uint, in UserUpdate) (entity.User, error)
	Deactivate(ctx context.Context, id uint) (entity.User, error)
	List(ctx context.Context, limit int, cursor string) ([]entity.User, string, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (entity.Session, entity.User, error)
	Logout(ctx context.Context, sessionID string) error
}
