package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/sirupsen/logrus"
)

type Companies struct {
	repo repository.CompanyRepository
	log  *logrus.Logger
}

var _ service.CompanyService = (*Companies)(nil)

func NewCompanies(repo repository.CompanyRepository, log *logrus.Logger) *Companies {
	return &Companies{repo: repo, log: log}
}

func (c *Companies) Create(ctx context.Context, in service.CompanyInput) (entity.Company, error) {
	in, err := normalizeCompany(in)
	if err != nil {
		return entity.Company{}, err
	}
	company := entity.Company{Name: in.Name, CNPJ: in.CNPJ, Active: true}
	if err := c.repo.Create(ctx, &company); err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) {
			c.log.WithError(err).Error("create company failed")
		}
		return entity.Company{}, err
	}
	return company, nil
}

func (c *Companies) GetByID(ctx context.Context, id uint) (entity.Company, error) {
	company, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.log.WithError(err).Error("get company failed")
		}
		return entity.Company{}, err
	}
	return company, nil
}

func (c *Companies) Update(ctx context.Context, id uint, in service.CompanyInput) (entity.Company, error) {
	in, err := normalizeCompany(in)
	if err != nil {
		return entity.Company{}, err
	}
	company, err := c.GetByID(ctx, id)
	if err != nil {
		return entity.Company{}, err
	}
	fields := map[string]any{"name": in.Name, "cnpj": in.CNPJ}
	if err := c.repo.Update(ctx, &company, fields); err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) {
			c.log.WithError(err).Error("update company failed")
		}
		return entity.Company{}, err
	}
	return company, nil
}

// Deactivate hides the company from new tickets and users. The row stays so
// existing tickets keep their company.
func (c *Companies) Deactivate(ctx context.Context, id uint) (entity.Company, error) {
	company, err := c.GetByID(ctx, id)
	if err != nil {
		return entity.Company{}, err
	}
	if !company.Active {
		return company, nil
	}
	if err := c.repo.Update(ctx, &company, map[string]any{"active": false}); err != nil {
		c.log.WithError(err).Error("deactivate company failed")
		return entity.Company{}, err
	}
	return company, nil
}

func (c *Companies) ListActive(ctx context.Context) ([]entity.Company, error) {
	companies, err := c.repo.ListActive(ctx)
	if err != nil {
		c.log.WithError(err).Error("list companies failed")
		return nil, err
	}
	return companies, nil
}

func normalizeCompany(in service.CompanyInput) (service.CompanyInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CNPJ = strings.TrimSpace(in.CNPJ)
	if in.Name == "" || in.CNPJ == "" {
		return in, repository.ErrInvalidInput
	}
	return in, nil
}
