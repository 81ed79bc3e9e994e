package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ChangeCaptureSuite struct {
	suite.Suite
	env   *env
	admin entity.User
}

func (s *ChangeCaptureSuite) SetupTest() {
	s.env = newEnv(s.T())
	s.admin = s.env.user(s.T(), "Admin", "admin@example.com", entity.RoleAdmin, true)
}

func TestChangeCaptureSuite(t *testing.T) {
	suite.Run(t, new(ChangeCaptureSuite))
}

func (s *ChangeCaptureSuite) TestCreateInRequestIsRecordedAfterCommit() {
	ctx := inRequest(s.admin.ID)
	company := entity.Company{Name: "Aurum Ltda"}
	s.Require().NoError(s.env.companies.Create(ctx, &company))

	created := s.env.entriesWith(s.T(), entity.ActionCreate)
	s.Require().Len(created, 1)
	e := created[0]
	s.Equal("empresas", e.Module)
	s.Equal("Empresa", e.EntityType)
	s.Require().NotNil(e.EntityID)
	s.Equal(company.ID, *e.EntityID)
	s.Equal("Criou Empresa 'Aurum Ltda'", e.Description)
	s.Equal("Aurum Ltda", e.NewValues.Map()["name"])
	s.True(e.OldValues.IsEmpty())
	s.Require().NotNil(e.UserID)
	s.Equal(s.admin.ID, *e.UserID)
	s.Equal("10.0.0.7", e.IPAddress)
}

func (s *ChangeCaptureSuite) TestUpdateStoresSnapshotsAndChangedFields() {
	ctx := inRequest(s.admin.ID)
	client := s.env.user(s.T(), "Carla", "carla@example.com", entity.RoleClient, true)

	s.Require().NoError(s.env.users.Update(ctx, &client, map[string]any{"phone": "11 99999-0000"}))

	updated := s.env.entriesWith(s.T(), entity.ActionUpdate)
	s.Require().Len(updated, 1)
	e := updated[0]
	s.Equal("usuarios", e.Module)
	s.Equal("Atualizou Usuario 'Carla'", e.Description)
	s.Equal("", e.OldValues.Map()["phone"])
	s.Equal("11 99999-0000", e.NewValues.Map()["phone"])
	s.Equal([]any{"phone"}, e.ExtraData.Map()["changed_fields"])
	s.NotContains(e.NewValues.Map(), "password_hash")
	s.NotContains(e.NewValues.Map(), "updated_at")
}

func (s *ChangeCaptureSuite) TestUpdateWithoutDiffIsSkipped() {
	ctx := inRequest(s.admin.ID)
	client := s.env.user(s.T(), "Carla", "carla@example.com", entity.RoleClient, true)

	s.Require().NoError(s.env.users.Update(ctx, &client, map[string]any{"name": "Carla"}))

	s.Empty(s.env.entriesWith(s.T(), entity.ActionUpdate))
}

func (s *ChangeCaptureSuite) TestDeleteIsRecordedWithOldValues() {
	ctx := inRequest(s.admin.ID)
	company := entity.Company{Name: "Temporaria"}
	s.Require().NoError(s.env.companies.Create(context.Background(), &company))

	err := s.env.db.WithTx(ctx, func(txCtx context.Context) error {
		return s.env.db.Write(txCtx).Delete(&company).Error
	})
	s.Require().NoError(err)

	deleted := s.env.entriesWith(s.T(), entity.ActionDelete)
	s.Require().Len(deleted, 1)
	s.Equal("Deletou Empresa 'Temporaria'", deleted[0].Description)
	s.Equal("Temporaria", deleted[0].OldValues.Map()["name"])
	s.True(deleted[0].NewValues.IsEmpty())
}

func (s *ChangeCaptureSuite) TestRollbackRecordsNothing() {
	ctx := inRequest(s.admin.ID)
	boom := errors.New("boom")

	err := s.env.db.WithTx(ctx, func(txCtx context.Context) error {
		company := entity.Company{Name: "Fantasma"}
		if err := s.env.companies.Create(txCtx, &company); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	s.Empty(s.env.entries(s.T()))
}

func (s *ChangeCaptureSuite) TestOutsideRequestRecordsNothing() {
	company := entity.Company{Name: "Seed Co"}
	s.Require().NoError(s.env.companies.Create(context.Background(), &company))

	s.Empty(s.env.entries(s.T()))
}

func (s *ChangeCaptureSuite) TestOneEntryPerChangeInTransaction() {
	ctx := inRequest(s.admin.ID)
	err := s.env.db.WithTx(ctx, func(txCtx context.Context) error {
		ticket := entity.Ticket{Title: "Impressora", Description: "Sem toner", Priority: entity.PriorityLow, Status: entity.StatusOpen, RequesterID: s.admin.ID}
		if err := s.env.tickets.Create(txCtx, &ticket); err != nil {
			return err
		}
		return s.env.tickets.AddReply(txCtx, &entity.TicketReply{TicketID: ticket.ID, AuthorID: s.admin.ID, Body: "Verificando"})
	})
	s.Require().NoError(err)

	created := s.env.entriesWith(s.T(), entity.ActionCreate)
	s.Require().Len(created, 2)
	s.Equal("Criou Chamado 'Impressora'", created[0].Description)
	s.Equal("RespostaChamado", created[1].EntityType)
	s.Contains(created[1].Description, "Criou RespostaChamado 'ID ")
}

func TestRegisterRefusesAuditTable(t *testing.T) {
	capture := NewChangeCapture(nil, quietLogger())

	err := capture.Register("audit_logs", Descriptor{EntityType: "AuditEntry"})
	assert.ErrorIs(t, err, repository.ErrUntrackable)

	err = capture.Register("", Descriptor{EntityType: "X"})
	assert.ErrorIs(t, err, repository.ErrUntrackable)

	err = capture.Register("companies", Descriptor{})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	capture.RegisterDefaults()
	assert.Equal(t, []string{"companies", "ticket_replies", "tickets", "users"}, capture.Tables())
}

func TestDisplayNameFallsBack(t *testing.T) {
	d := Descriptor{DisplayName: DisplayBy(func(c *entity.Company) string { return c.Name })}

	assert.Equal(t, "Aurum", displayName(d, &entity.Company{Name: "Aurum"}, uint(1)))
	assert.Equal(t, "Aurum", displayName(d, entity.Company{Name: "Aurum"}, uint(1)))
	assert.Equal(t, "ID 9", displayName(d, &entity.Company{}, uint(9)))
	assert.Equal(t, "Unknown", displayName(Descriptor{}, nil, nil))
}

func TestChangedFields(t *testing.T) {
	before := map[string]any{"a": 1.0, "b": "x", "gone": true}
	after := map[string]any{"a": 1.0, "b": "y", "new": "z"}

	require.Equal(t, []string{"b", "gone", "new"}, changedFields(before, after))
	assert.Empty(t, changedFields(after, after))
}

func TestSnapshotExcludesFields(t *testing.T) {
	snap := snapshot(&entity.Company{ID: 3, Name: "Aurum"}, DefaultExcludedFields)

	assert.Equal(t, "Aurum", snap["name"])
	assert.NotContains(t, snap, "created_at")
	assert.Nil(t, snapshot(nil, nil))
}
