package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence/persistencetest"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UnitOfWorkSuite struct {
	suite.Suite
	db      *persistence.DB
	users   *persistence.UserRepository
	changes [][]repository.Change
}

func TestUnitOfWorkSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkSuite))
}

func (s *UnitOfWorkSuite) SetupTest() {
	s.db = persistencetest.Open(s.T())
	s.db.Track("users")
	s.users = persistence.NewUserRepository(s.db)
	s.changes = nil
	s.db.OnBeforeCommit(func(ctx context.Context, uow repository.UnitOfWork) {
		s.changes = append(s.changes, uow.Changes())
	})
}

func (s *UnitOfWorkSuite) newUser(name string) *entity.User {
	return &entity.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: entity.RoleClient, Active: true}
}

func (s *UnitOfWorkSuite) TestCreateIsCaptured() {
	user := s.newUser("ana")
	s.Require().NoError(s.users.Create(context.Background(), user))

	s.Require().Len(s.changes, 1)
	s.Require().Len(s.changes[0], 1)
	c := s.changes[0][0]
	s.Equal(repository.ChangeCreate, c.Kind)
	s.Equal("users", c.Table)
	s.EqualValues(user.ID, c.PrimaryKey)
	s.Nil(c.Before)
	after, ok := c.After.(*entity.User)
	s.Require().True(ok)
	s.Equal("ana", after.Name)
}

func (s *UnitOfWorkSuite) TestUpdateCarriesBeforeAndAfter() {
	user := s.newUser("bia")
	s.Require().NoError(s.users.Create(context.Background(), user))
	s.changes = nil

	s.Require().NoError(s.users.Update(context.Background(), user, map[string]any{"name": "Beatriz"}))

	s.Require().Len(s.changes, 1)
	s.Require().Len(s.changes[0], 1)
	c := s.changes[0][0]
	s.Equal(repository.ChangeUpdate, c.Kind)
	s.Equal("bia", c.Before.(*entity.User).Name)
	s.Equal("Beatriz", c.After.(*entity.User).Name)
	s.Equal("Beatriz", user.Name)
}

func (s *UnitOfWorkSuite) TestDeleteIsCaptured() {
	user := s.newUser("caio")
	s.Require().NoError(s.users.Create(context.Background(), user))
	s.changes = nil

	err := s.db.WithTx(context.Background(), func(txCtx context.Context) error {
		return s.db.Write(txCtx).Delete(user).Error
	})
	s.Require().NoError(err)

	s.Require().Len(s.changes, 1)
	s.Require().Len(s.changes[0], 1)
	c := s.changes[0][0]
	s.Equal(repository.ChangeDelete, c.Kind)
	s.Equal("caio", c.Before.(*entity.User).Name)
	s.Nil(c.After)
}

func (s *UnitOfWorkSuite) TestRollbackRecordsNothing() {
	boom := errors.New("boom")
	err := s.db.WithTx(context.Background(), func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, s.newUser("davi")); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)
	s.Empty(s.changes)

	_, err = s.users.GetByEmail(context.Background(), "davi@example.com")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *UnitOfWorkSuite) TestAfterCallbacksFollowOutcome() {
	var events []string
	s.db.OnBeforeCommit(func(ctx context.Context, uow repository.UnitOfWork) {
		uow.AfterCommit(func(context.Context) { events = append(events, "commit") })
		uow.AfterRollback(func() { events = append(events, "rollback") })
	})

	s.Require().NoError(s.users.Create(context.Background(), s.newUser("eva")))
	s.Equal([]string{"commit"}, events)

	events = nil
	err := s.db.WithTx(context.Background(), func(txCtx context.Context) error {
		return s.users.Create(txCtx, s.newUser("eva"))
	})
	s.Require().Error(err)
	s.Empty(events, "a failing fn never reaches the before-commit hooks")
}

func (s *UnitOfWorkSuite) TestNestedTxJoinsOuter() {
	err := s.db.WithTx(context.Background(), func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, s.newUser("fabi")); err != nil {
			return err
		}
		return s.users.Create(txCtx, s.newUser("gabi"))
	})
	s.Require().NoError(err)
	s.Require().Len(s.changes, 1)
	s.Len(s.changes[0], 2)
}

func (s *UnitOfWorkSuite) TestUntrackedTablesAreIgnored() {
	companies := persistence.NewCompanyRepository(s.db)
	err := s.db.WithTx(context.Background(), func(txCtx context.Context) error {
		return companies.Create(txCtx, &entity.Company{Name: "Acme", CNPJ: "1", Active: true})
	})
	s.Require().NoError(err)
	s.Require().Len(s.changes, 1)
	s.Empty(s.changes[0])
}

func TestWriteOutsideTxRecordsNothing(t *testing.T) {
	db := persistencetest.Open(t)
	db.Track("users")
	called := false
	db.OnBeforeCommit(func(context.Context, repository.UnitOfWork) { called = true })

	user := &entity.User{Name: "h", Email: "h@example.com", PasswordHash: "x", Role: entity.RoleClient, Active: true}
	require.NoError(t, db.Write(context.Background()).Create(user).Error)
	require.False(t, called)
}
