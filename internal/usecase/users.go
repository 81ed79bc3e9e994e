package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	repo repository.UserRepository
	log  *logrus.Logger
}

var _ service.UserService = (*User)(nil)

func NewUser(repo repository.UserRepository, log *logrus.Logger) *User {
	return &User{repo: repo, log: log}
}

func (u *User) Create(ctx context.Context, in service.NewUser) (entity.User, error) {
	if in.Role == "" {
		in.Role = entity.RoleClient
	}
	if err := validateUser(in.Name, in.Email, in.Role); err != nil {
		return entity.User{}, err
	}
	if len(in.Password) < 6 {
		return entity.User{}, repository.ErrInvalidInput
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return entity.User{}, err
	}

	user := entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
		CompanyID:    in.CompanyID,
		Active:       true,
	}
	if err := u.repo.Create(ctx, &user); err != nil {
		u.log.WithError(err).Error("create user failed")
		return entity.User{}, err
	}
	return user, nil
}

func (u *User) GetByID(ctx context.Context, id uint) (entity.User, error) {
	user, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			u.log.WithError(err).Error("get user failed")
		}
		return entity.User{}, err
	}
	return user, nil
}

func (u *User) Update(ctx context.Context, id uint, in service.UserUpdate) (entity.User, error) {
	if err := validateUser(in.Name, in.Email, in.Role); err != nil {
		return entity.User{}, err
	}
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return entity.User{}, err
	}
	fields := map[string]any{
		"name":       strings.TrimSpace(in.Name),
		"email":      strings.ToLower(strings.TrimSpace(in.Email)),
		"phone":      in.Phone,
		"role":       in.Role,
		"company_id": in.CompanyID,
	}
	if err := u.repo.Update(ctx, &user, fields); err != nil {
		u.log.WithError(err).Error("update user failed")
		return entity.User{}, err
	}
	return user, nil
}

// Deactivate disables login for the user. Rows are never deleted so audit
// history keeps pointing at them.
func (u *User) Deactivate(ctx context.Context, id uint) (entity.User, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return entity.User{}, err
	}
	if !user.Active {
		return user, nil
	}
	if err := u.repo.Update(ctx, &user, map[string]any{"active": false}); err != nil {
		u.log.WithError(err).Error("deactivate user failed")
		return entity.User{}, err
	}
	return user, nil
}

func (u *User) List(ctx context.Context, limit int, cursor string) ([]entity.User, string, error) {
	users, err := u.repo.ListCursor(ctx, limit, cursor)
	if err != nil {
		if !errors.Is(err, repository.ErrInvalidCursor) {
			u.log.WithError(err).Error("list users failed")
		}
		return nil, "", err
	}
	nextCursor := ""
	if len(users) > 0 {
		last := users[len(users)-1]
		nextCursor = pagination.Next(len(users), limit, last.CreatedAt, last.ID)
	}
	return users, nextCursor, nil
}

func validateUser(name, email, role string) error {
	if strings.TrimSpace(name) == "" || !entity.ValidRole(role) {
		return repository.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return repository.ErrInvalidInput
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
