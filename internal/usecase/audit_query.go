package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/pagination"
	"github.com/mssola/useragent"
	"github.com/sirupsen/logrus"
)

var csvHeader = []string{
	"ID", "Timestamp", "Usuário", "Tipo Usuário", "Email", "IP", "Ação", "Módulo",
	"Tipo Entidade", "ID Entidade", "Descrição", "Endpoint", "Método", "Status", "Tempo Resposta (ms)",
}

const dateLayout = "2006-01-02"

type AuditQuery struct {
	repo   repository.AuditRepository
	logger service.ActivityLogger
	cfg    config.Audit
	log    *logrus.Logger
	now    func() time.Time
}

var _ service.AuditService = (*AuditQuery)(nil)

func NewAuditQuery(repo repository.AuditRepository, logger service.ActivityLogger, cfg config.Audit, log *logrus.Logger) *AuditQuery {
	return &AuditQuery{
		repo:   repo,
		logger: logger,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ParseAuditFilter reads the list and export query parameters. Malformed
// dates and user ids are ignored. date_to includes the whole day.
func ParseAuditFilter(q url.Values) repository.AuditFilter {
	f := repository.AuditFilter{
		Action: strings.ToUpper(strings.TrimSpace(q.Get("action"))),
		Module: strings.ToLower(strings.TrimSpace(q.Get("module"))),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if raw := q.Get("user_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			uid := uint(id)
			f.UserID = &uid
		}
	}
	if raw := q.Get("date_from"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			f.DateFrom = &t
		}
	}
	if raw := q.Get("date_to"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			end := t.AddDate(0, 0, 1)
			f.DateTo = &end
		}
	}
	return f
}

func (q *AuditQuery) List(ctx context.Context, filter repository.AuditFilter, limit int, cursor string) ([]entity.AuditEntry, string, error) {
	if limit <= 0 {
		limit = q.cfg.PageSize
	}
	entries, err := q.repo.ListCursor(ctx, filter, limit, cursor)
	if err != nil {
		if !errors.Is(err, repository.ErrInvalidCursor) {
			q.log.WithError(err).Error("list audit entries failed")
		}
		return nil, "", err
	}
	next := ""
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		next = pagination.Next(len(entries), limit, last.Timestamp, last.ID)
	}
	return entries, next, nil
}

func (q *AuditQuery) Get(ctx context.Context, id uint) (service.AuditDetail, error) {
	entry, err := q.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			q.log.WithError(err).Error("get audit entry failed")
		}
		return service.AuditDetail{}, err
	}
	return service.AuditDetail{
		Entry:     entry,
		OldValues: entry.OldValues.Map(),
		NewValues: entry.NewValues.Map(),
		ExtraData: entry.ExtraData.Map(),
		Client:    ParseClient(entry.UserAgent),
	}, nil
}

// ParseClient breaks a user agent down for the detail view.
func ParseClient(raw string) service.ClientInfo {
	if raw == "" {
		return service.ClientInfo{}
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return service.ClientInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

func (q *AuditQuery) Stats(ctx context.Context) (repository.AuditStats, error) {
	stats, err := q.repo.Stats(ctx, q.now(), q.cfg.TopN)
	if err != nil {
		q.log.WithError(err).Error("audit stats failed")
		return repository.AuditStats{}, err
	}
	return stats, nil
}

// ExportCSV writes up to the configured export limit of matching entries
// and records an EXPORT entry. It returns the number of rows written.
func (q *AuditQuery) ExportCSV(ctx context.Context, w io.Writer, filter repository.AuditFilter) (int, error) {
	entries, err := q.repo.Export(ctx, filter, q.cfg.ExportLimit)
	if err != nil {
		q.log.WithError(err).Error("export audit entries failed")
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := cw.Write(csvRow(e)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	if q.logger != nil {
		q.logger.LogExport(ctx, "logs", fmt.Sprintf("Exportou %d logs de atividade em CSV", len(entries)), map[string]any{
			"format":  "csv",
			"count":   len(entries),
			"filters": filterSummary(filter),
		})
	}
	return len(entries), nil
}

func csvRow(e entity.AuditEntry) []string {
	return []string{
		strconv.FormatUint(uint64(e.ID), 10),
		e.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		e.UserName,
		e.UserType,
		e.UserEmail,
		e.IPAddress,
		e.Action,
		e.Module,
		e.EntityType,
		optUint(e.EntityID),
		e.Description,
		e.Endpoint,
		e.Method,
		optInt(e.StatusCode),
		optFloat(e.ResponseTime),
	}
}

func filterSummary(f repository.AuditFilter) map[string]any {
	out := map[string]any{}
	if f.Action != "" {
		out["action"] = f.Action
	}
	if f.Module != "" {
		out["module"] = f.Module
	}
	if f.UserID != nil {
		out["user_id"] = *f.UserID
	}
	if f.DateFrom != nil {
		out["date_from"] = f.DateFrom.Format(dateLayout)
	}
	if f.DateTo != nil {
		out["date_to"] = f.DateTo.AddDate(0, 0, -1).Format(dateLayout)
	}
	if f.Search != "" {
		out["search"] = f.Search
	}
	return out
}

func optUint(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
