package usecase

import (
	"context"
	"testing"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/stretchr/testify/suite"
)

type CompaniesSuite struct {
	suite.Suite
	env   *env
	uc    *Companies
	admin entity.User
}

func (s *CompaniesSuite) SetupTest() {
	s.env = newEnv(s.T())
	s.uc = NewCompanies(s.env.companies, quietLogger())
	s.admin = s.env.user(s.T(), "Admin", "admin@example.com", entity.RoleAdmin, true)
}

func TestCompaniesSuite(t *testing.T) {
	suite.Run(t, new(CompaniesSuite))
}

func (s *CompaniesSuite) TestCreateUpdateDeactivate() {
	ctx := inRequest(s.admin.ID)

	company, err := s.uc.Create(ctx, service.CompanyInput{Name: " Acme ", CNPJ: "12.345.678/0001-90"})
	s.Require().NoError(err)
	s.Equal("Acme", company.Name)
	s.True(company.Active)

	updated, err := s.uc.Update(ctx, company.ID, service.CompanyInput{Name: "Acme Ltda", CNPJ: company.CNPJ})
	s.Require().NoError(err)
	s.Equal("Acme Ltda", updated.Name)

	deactivated, err := s.uc.Deactivate(ctx, company.ID)
	s.Require().NoError(err)
	s.False(deactivated.Active)
	_, err = s.uc.Deactivate(ctx, company.ID)
	s.Require().NoError(err)

	created := s.env.entriesWith(s.T(), entity.ActionCreate)
	s.Require().Len(created, 1)
	s.Equal("Criou Empresa 'Acme'", created[0].Description)

	changes := s.env.entriesWith(s.T(), entity.ActionUpdate)
	s.Require().Len(changes, 2)
	s.Equal("Atualizou Empresa 'Acme Ltda'", changes[0].Description)
	s.Equal("empresas", changes[0].Module)
	s.Equal([]any{"name"}, changes[0].ExtraData.Map()["changed_fields"])
	s.Equal("Acme", changes[0].OldValues.Map()["name"])
	s.Equal([]any{"active"}, changes[1].ExtraData.Map()["changed_fields"])

	active, err := s.uc.ListActive(context.Background())
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *CompaniesSuite) TestDuplicateCNPJ() {
	_, err := s.uc.Create(context.Background(), service.CompanyInput{Name: "Um", CNPJ: "111"})
	s.Require().NoError(err)
	other, err := s.uc.Create(context.Background(), service.CompanyInput{Name: "Dois", CNPJ: "222"})
	s.Require().NoError(err)

	_, err = s.uc.Create(context.Background(), service.CompanyInput{Name: "Tres", CNPJ: "111"})
	s.ErrorIs(err, repository.ErrAlreadyExists)
	_, err = s.uc.Update(context.Background(), other.ID, service.CompanyInput{Name: "Dois", CNPJ: "111"})
	s.ErrorIs(err, repository.ErrAlreadyExists)
}

func (s *CompaniesSuite) TestRejectsInvalidInput() {
	_, err := s.uc.Create(context.Background(), service.CompanyInput{Name: " ", CNPJ: "1"})
	s.ErrorIs(err, repository.ErrInvalidInput)

	_, err = s.uc.Update(context.Background(), 99, service.CompanyInput{Name: "x", CNPJ: "1"})
	s.ErrorIs(err, repository.ErrNotFound)
}
