package handlers

import (
	"bytes"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listAuditLogs(c *gin.Context) {
	filter := usecase.ParseAuditFilter(c.Request.URL.Query())
	entries, next, err := h.svc.Audit.List(c.Request.Context(), filter, limitQuery(c), c.Query("cursor"))
	if err != nil {
		response.RespondErr(c, err, "list failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, entries, &response.Meta{NextCursor: next, Count: len(entries)})
}

func (h *Handler) getAuditLog(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Audit.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "get failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, detail, nil)
}

func (h *Handler) auditStats(c *gin.Context) {
	stats, err := h.svc.Audit.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "stats failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, stats, nil)
}

func (h *Handler) exportAuditLogs(c *gin.Context) {
	filter := usecase.ParseAuditFilter(c.Request.URL.Query())
	var buf bytes.Buffer
	if _, err := h.svc.Audit.ExportCSV(c.Request.Context(), &buf, filter); err != nil {
		response.RespondErr(c, err, "export failed")
		return
	}
	name := fmt.Sprintf("logs_atividade_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(nethttp.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
