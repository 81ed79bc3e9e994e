package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccessOpensSession(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "Ana", "ana@example.com", entity.RoleTechnician, true)
	auth := NewAuth(e.users, e.sessions, e.activity, time.Hour, quietLogger())

	session, user, err := auth.Login(inRequest(0), " ANA@example.com ", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.Equal(t, u.ID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	stored, err := e.sessions.GetActive(context.Background(), session.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.UserID)

	entries := e.entriesWith(t, entity.ActionLoginSuccess)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, u.ID, *entries[0].UserID)
	assert.Equal(t, session.ID, entries[0].SessionID)
	assert.Equal(t, "10.0.0.7", entries[0].IPAddress)
}

func TestLoginFailuresAreRecorded(t *testing.T) {
	e := newEnv(t)
	e.user(t, "Ana", "ana@example.com", entity.RoleClient, true)
	e.user(t, "Bia", "bia@example.com", entity.RoleClient, false)
	auth := NewAuth(e.users, e.sessions, e.activity, time.Hour, quietLogger())

	cases := []struct {
		email, password, reason string
	}{
		{"ana@example.com", "errada", "senha incorreta"},
		{"ninguem@example.com", "segredo123", "usuário não encontrado"},
		{"bia@example.com", "segredo123", "usuário inativo"},
	}
	for _, tc := range cases {
		_, _, err := auth.Login(inRequest(0), tc.email, tc.password)
		assert.ErrorIs(t, err, repository.ErrInvalidCredentials, tc.email)
	}

	failed := e.entriesWith(t, entity.ActionLoginFailed)
	require.Len(t, failed, len(cases))
	for i, tc := range cases {
		assert.Nil(t, failed[i].UserID)
		assert.Equal(t, tc.email, failed[i].UserName)
		assert.Equal(t, tc.reason, failed[i].ExtraData.Map()["failure_reason"])
	}
}

func TestLogoutRecordsBeforeDeletingSession(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "Ana", "ana@example.com", entity.RoleAdmin, true)
	auth := NewAuth(e.users, e.sessions, e.activity, time.Hour, quietLogger())
	session, _, err := auth.Login(context.Background(), u.Email, "segredo123")
	require.NoError(t, err)

	ctx := requestctx.WithSession(inRequest(0), requestctx.Session{ID: session.ID, UserID: u.ID})
	require.NoError(t, auth.Logout(ctx, session.ID))

	logout := e.entriesWith(t, entity.ActionLogout)
	require.Len(t, logout, 1)
	require.NotNil(t, logout[0].UserID)
	assert.Equal(t, u.ID, *logout[0].UserID)

	_, err = e.sessions.GetActive(context.Background(), session.ID, time.Now().UTC())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserLifecycle(t *testing.T) {
	e := newEnv(t)
	users := NewUser(e.users, quietLogger())
	ctx := inRequest(0)

	_, err := users.Create(ctx, service.NewUser{Name: "X", Email: "not-an-email", Password: "segredo123"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	_, err = users.Create(ctx, service.NewUser{Name: "X", Email: "x@example.com", Password: "123"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	created, err := users.Create(ctx, service.NewUser{Name: "Caio", Email: "Caio@Example.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, created.Role)
	assert.Equal(t, "caio@example.com", created.Email)
	assert.True(t, created.Active)

	updated, err := users.Update(ctx, created.ID, service.UserUpdate{Name: "Caio Lima", Email: created.Email, Role: entity.RoleTechnician})
	require.NoError(t, err)
	assert.Equal(t, "Caio Lima", updated.Name)

	off, err := users.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	audit := e.entries(t)
	require.Len(t, audit, 3)
	assert.Equal(t, "Criou Usuario 'Caio'", audit[0].Description)
	assert.NotContains(t, audit[0].NewValues.Map(), "password_hash")
	assert.Equal(t, "Atualizou Usuario 'Caio Lima'", audit[1].Description)
	assert.ElementsMatch(t, []any{"name", "role"}, audit[1].ExtraData.Map()["changed_fields"])
	assert.Equal(t, []any{"active"}, audit[2].ExtraData.Map()["changed_fields"])
}
