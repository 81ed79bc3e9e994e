package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuditFilter(t *testing.T) {
	f := ParseAuditFilter(url.Values{
		"action":    {"login_failed"},
		"module":    {" AUTH "},
		"user_id":   {"12"},
		"date_from": {"2026-03-01"},
		"date_to":   {"2026-03-31"},
		"search":    {" senha "},
	})

	assert.Equal(t, "LOGIN_FAILED", f.Action)
	assert.Equal(t, "auth", f.Module)
	assert.Equal(t, "senha", f.Search)
	require.NotNil(t, f.UserID)
	assert.Equal(t, uint(12), *f.UserID)
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *f.DateTo)
}

func TestParseAuditFilterIgnoresMalformedValues(t *testing.T) {
	f := ParseAuditFilter(url.Values{
		"user_id":   {"abc"},
		"date_from": {"01/03/2026"},
		"date_to":   {"ontem"},
	})

	assert.Equal(t, repository.AuditFilter{}, f)
}

func TestParseClient(t *testing.T) {
	c := ParseClient("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	assert.Equal(t, "Chrome", c.Browser)
	assert.Equal(t, "124.0.0.0", c.BrowserVersion)
	assert.Contains(t, c.OS, "Windows")
	assert.False(t, c.Mobile)
	assert.Equal(t, service.ClientInfo{}, ParseClient(""))
}

func TestExportCSVWritesRowsAndRecordsExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	status := 404
	ms := 12.5
	id := uint(9)
	require.NoError(t, e.audit.Create(ctx, &entity.AuditEntry{
		Timestamp:    time.Date(2026, 5, 2, 13, 4, 5, 0, time.UTC),
		UserName:     "Ana",
		Action:       entity.ActionView,
		Module:       "chamados",
		EntityType:   "Chamado",
		EntityID:     &id,
		Description:  "Acessou, com virgula",
		StatusCode:   &status,
		ResponseTime: &ms,
	}))
	require.NoError(t, e.audit.Create(ctx, &entity.AuditEntry{Timestamp: time.Now().UTC(), Action: entity.ActionLogout, Module: "auth"}))

	q := NewAuditQuery(e.audit, e.activity, config.Audit{ExportLimit: 100, PageSize: 50, TopN: 5}, quietLogger())
	var buf bytes.Buffer
	n, err := q.ExportCSV(ctx, &buf, repository.AuditFilter{Module: "chamados"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Len(t, records[0], 15)
	row := records[1]
	assert.Equal(t, "2026-05-02 13:04:05", row[1])
	assert.Equal(t, "Ana", row[2])
	assert.Equal(t, "9", row[9])
	assert.Equal(t, "Acessou, com virgula", row[10])
	assert.Equal(t, "404", row[13])
	assert.Equal(t, "12.50", row[14])

	exports := e.entriesWith(t, entity.ActionExport)
	require.Len(t, exports, 1)
	assert.Equal(t, "logs", exports[0].Module)
	assert.Equal(t, "Exportou 1 logs de atividade em CSV", exports[0].Description)
	assert.Equal(t, map[string]any{"module": "chamados"}, exports[0].ExtraData.Map()["filters"])
}

func TestAuditListAndDetail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, e.audit.Create(ctx, &entity.AuditEntry{
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
			Action:    entity.ActionUpdate,
			Module:    "chamados",
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			OldValues: entity.EncodeDocument(map[string]any{"status": "aberto"}),
		}))
	}
	q := NewAuditQuery(e.audit, e.activity, config.Audit{ExportLimit: 100, PageSize: 2, TopN: 5}, quietLogger())

	page, next, err := q.List(ctx, repository.AuditFilter{}, 0, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].Timestamp.After(page[1].Timestamp))
	require.NotEmpty(t, next)

	rest, next, err := q.List(ctx, repository.AuditFilter{}, 0, next)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, next)

	_, _, err = q.List(ctx, repository.AuditFilter{}, 0, "%%%")
	assert.ErrorIs(t, err, repository.ErrInvalidCursor)

	detail, err := q.Get(ctx, page[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "aberto", detail.OldValues["status"])
	assert.Empty(t, detail.NewValues)
	assert.True(t, detail.Client.Mobile)

	_, err = q.Get(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Last24h)
}
