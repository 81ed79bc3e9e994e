package service

import (
	"context"
	"io"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
)

type ClientInfo struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

type AuditDetail struct {
	Entry     entity.AuditEntry `json:"entry"`
	OldValues map[string]any    `json:"old_values"`
	NewValues map[string]any    `json:"new_values"`
	ExtraData map[string]any    `json:"extra_data"`
	Client    ClientInfo        `json:"client"`
}

type AuditService interface {
	List(ctx context.Context, filter repository.AuditFilter, limit int, cursor string) ([]entity.AuditEntry, string, error)
	Get(ctx context.Context, id uint) (AuditDetail, error)
	Stats(ctx context.Context) (repository.AuditStats, error)
	ExportCSV(ctx context.Context, w io.Writer, filter repository.AuditFilter) (int, error)
}
