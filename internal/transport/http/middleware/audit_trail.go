package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"path"
	"strings"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/gin-gonic/gin"
)

const (
	hiddenValue    = "***HIDDEN***"
	maxBodyCapture = 64 << 10
)

var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".ico": {}, ".png": {}, ".jpg": {}, ".gif": {},
	".svg": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
}

var sensitiveKeys = []string{
	"password", "senha", "pwd", "pass", "secret", "token", "key", "auth",
	"credit_card", "ssn", "cpf", "cnpj",
}

// AuditTrail records an ACCESS entry for every request, then an outcome
// entry for mutations and failures. Successful reads are left to the
// handlers that know what was viewed. The successful audit-log listing is
// not recorded so that reading the trail does not grow it.
func AuditTrail(activity service.ActivityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if skipAudit(p) {
			c.Next()
			return
		}
		listing := isAuditListing(c.Request.Method, p)

		var requestData any
		if m := c.Request.Method; m == nethttp.MethodPost || m == nethttp.MethodPut || m == nethttp.MethodPatch {
			requestData = captureJSONBody(c)
		}
		if !listing {
			logAccess(c, activity, requestData)
		}

		defer func() {
			if rec := recover(); rec != nil {
				status := nethttp.StatusInternalServerError
				activity.Log(c.Request.Context(), service.Activity{
					Action:      entity.ActionError,
					Module:      moduleForPath(p),
					Description: fmt.Sprintf("Erro em %s %s: %v", c.Request.Method, p, rec),
					StatusCode:  &status,
					ExtraData: map[string]any{
						"exception_message": fmt.Sprint(rec),
						"path":              p,
						"method":            c.Request.Method,
					},
				})
				panic(rec)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if status < 400 && (c.Request.Method == nethttp.MethodGet || listing) {
			return
		}
		extra := map[string]any{
			"response_size": c.Writer.Size(),
			"content_type":  c.Writer.Header().Get("Content-Type"),
		}
		if requestData != nil {
			extra["request_data"] = requestData
		}
		if q := c.Request.URL.RawQuery; q != "" {
			extra["query_string"] = q
		}
		activity.Log(c.Request.Context(), service.Activity{
			Action:      actionFor(c.Request.Method, status),
			Module:      moduleForPath(p),
			Description: fmt.Sprintf("%s %s - Status %d", c.Request.Method, p, status),
			StatusCode:  &status,
			ExtraData:   extra,
		})
	}
}

func logAccess(c *gin.Context, activity service.ActivityLogger, requestData any) {
	r := c.Request
	description := fmt.Sprintf("Acessou %s %s", r.Method, r.URL.Path)
	if route := c.FullPath(); route != "" {
		description = fmt.Sprintf("Acessou endpoint '%s %s'", r.Method, route)
	}
	extra := map[string]any{"path": r.URL.Path}
	if q := r.URL.RawQuery; q != "" {
		extra["query_string"] = q
	}
	if ref := r.Referer(); ref != "" {
		extra["referrer"] = ref
	}
	if r.ContentLength > 0 {
		extra["content_length"] = r.ContentLength
	}
	if requestData != nil {
		extra["request_data"] = requestData
	}
	activity.Log(r.Context(), service.Activity{
		Action:      entity.ActionAccess,
		Module:      moduleForPath(r.URL.Path),
		Description: description,
		ExtraData:   extra,
	})
}

// skipAudit drops static assets and the probe endpoints scraped by
// infrastructure.
func skipAudit(p string) bool {
	if _, ok := staticExtensions[strings.ToLower(path.Ext(p))]; ok {
		return true
	}
	return p == "/metrics" || p == "/healthz"
}

func isAuditListing(method, p string) bool {
	return method == nethttp.MethodGet && strings.TrimSuffix(p, "/") == "/api/audit-logs"
}

func actionFor(method string, status int) string {
	if status >= 400 {
		return entity.ActionError
	}
	switch method {
	case nethttp.MethodPost:
		return entity.ActionCreate
	case nethttp.MethodPut, nethttp.MethodPatch:
		return entity.ActionUpdate
	case nethttp.MethodDelete:
		return entity.ActionDelete
	default:
		return entity.ActionView
	}
}

func moduleForPath(p string) string {
	p = strings.ToLower(p)
	switch {
	case strings.HasPrefix(p, "/api/tickets"):
		return "chamados"
	case strings.HasPrefix(p, "/api/auth"), strings.HasPrefix(p, "/api/users"):
		return "usuarios"
	case strings.HasPrefix(p, "/api/companies"):
		return "empresas"
	case strings.HasPrefix(p, "/api/notifications"):
		return "notificacoes"
	case strings.HasPrefix(p, "/api/audit-logs"):
		return "logs"
	case strings.HasPrefix(p, "/api"):
		return "api"
	default:
		return "system"
	}
}

// captureJSONBody reads a JSON body for the log and puts it back for the
// handler. Non-JSON or oversized bodies are not captured.
func captureJSONBody(c *gin.Context) any {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "json") {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyCapture+1))
	if err != nil {
		return nil
	}
	rest := c.Request.Body
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))
	if len(body) > maxBodyCapture {
		return nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	return sanitize(data)
}

func sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitive(k) {
				out[k] = hiddenValue
				continue
			}
			out[k] = sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	default:
		return v
	}
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
