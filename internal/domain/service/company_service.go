package service

import (
	"context"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
)

type CompanyInput struct {
	Name string
	CNPJ string
}

type CompanyService interface {
	Create(ctx context.Context, in CompanyInput) (entity.Company, error)
	GetByID(ctx context.Context, id uint) (entity.Company, error)
	Update(ctx context.Context, id uint, in CompanyInput) (entity.Company, error)
	Deactivate(ctx context.Context, id uint) (entity.Company, error)
	ListActive(ctx context.Context) ([]entity.Company, error)
}
