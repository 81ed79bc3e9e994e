package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	service.ActivityLogger
	mu      sync.Mutex
	entries []service.Activity
	ctxs    []context.Context
}

func (r *recordingLogger) Log(ctx context.Context, a service.Activity) (*entity.AuditEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	r.ctxs = append(r.ctxs, ctx)
	return &entity.AuditEntry{Action: a.Action}, true
}

func (r *recordingLogger) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, a := range r.entries {
		out = append(out, a.Action)
	}
	return out
}

func init() {
	gin.SetMode(gin.TestMode)
}

func auditedEngine(rec *recordingLogger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestContext(), AuditTrail(rec))
	return r
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", ClientIP(req))
}

func TestModuleForPath(t *testing.T) {
	cases := map[string]string{
		"/api/tickets/4/claim":  "chamados",
		"/api/auth/login":       "usuarios",
		"/API/Users":            "usuarios",
		"/api/companies":        "empresas",
		"/api/notifications/1":  "notificacoes",
		"/api/audit-logs/stats": "logs",
		"/api/other":            "api",
		"/":                     "system",
	}
	for p, want := range cases {
		assert.Equal(t, want, moduleForPath(p), p)
	}
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, entity.ActionCreate, actionFor(http.MethodPost, 201))
	assert.Equal(t, entity.ActionUpdate, actionFor(http.MethodPut, 200))
	assert.Equal(t, entity.ActionUpdate, actionFor(http.MethodPatch, 204))
	assert.Equal(t, entity.ActionDelete, actionFor(http.MethodDelete, 200))
	assert.Equal(t, entity.ActionView, actionFor(http.MethodGet, 200))
	assert.Equal(t, entity.ActionError, actionFor(http.MethodPost, 422))
}

func TestSanitizeHidesNestedSecrets(t *testing.T) {
	in := map[string]any{
		"email":    "ana@example.com",
		"Password": "x",
		"profile": map[string]any{
			"api_token": "t",
			"cpf":       "000",
			"name":      "Ana",
		},
		"items": []any{map[string]any{"secret_answer": "blue", "qty": 2.0}},
	}

	out := sanitize(in).(map[string]any)
	assert.Equal(t, "ana@example.com", out["email"])
	assert.Equal(t, hiddenValue, out["Password"])
	profile := out["profile"].(map[string]any)
	assert.Equal(t, hiddenValue, profile["api_token"])
	assert.Equal(t, hiddenValue, profile["cpf"])
	assert.Equal(t, "Ana", profile["name"])
	item := out["items"].([]any)[0].(map[string]any)
	assert.Equal(t, hiddenValue, item["secret_answer"])
	assert.Equal(t, 2.0, item["qty"])
}

func TestAuditTrailRecordsMutationWithSanitizedBody(t *testing.T) {
	rec := &recordingLogger{}
	r := auditedEngine(rec)
	var handlerBody string
	r.POST("/api/auth/login", func(c *gin.Context) {
		var m map[string]any
		require.NoError(t, c.ShouldBindJSON(&m))
		handlerBody = m["password"].(string)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login?next=/home", strings.NewReader(`{"email":"a@b.com","password":"segredo"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "segredo", handlerBody, "handler still sees the original body")
	require.Equal(t, []string{entity.ActionAccess, entity.ActionCreate}, rec.actions())
	access := rec.entries[0]
	assert.Equal(t, "Acessou endpoint 'POST /api/auth/login'", access.Description)
	assert.Equal(t, "usuarios", access.Module)
	assert.Equal(t, hiddenValue, access.ExtraData.(map[string]any)["request_data"].(map[string]any)["password"])

	a := rec.entries[1]
	assert.Equal(t, "usuarios", a.Module)
	assert.Equal(t, "POST /api/auth/login - Status 200", a.Description)
	require.NotNil(t, a.StatusCode)
	assert.Equal(t, 200, *a.StatusCode)

	extra := a.ExtraData.(map[string]any)
	assert.Equal(t, "next=/home", extra["query_string"])
	assert.Equal(t, map[string]any{"email": "a@b.com", "password": hiddenValue}, extra["request_data"])

	req2, ok := requestctx.RequestFrom(rec.ctxs[0])
	require.True(t, ok)
	assert.Equal(t, "/api/auth/login", req2.Endpoint)
	assert.Equal(t, "curl/8.0", req2.UserAgent)
	assert.NotEmpty(t, req2.ID)
}

func TestAuditTrailOutcomeEntries(t *testing.T) {
	cases := []struct {
		path   string
		status int
		want   []string
	}{
		{"/api/tickets/1", http.StatusOK, []string{entity.ActionAccess}},
		{"/api/missing", http.StatusNotFound, []string{entity.ActionAccess, entity.ActionError}},
		{"/api/audit-logs", http.StatusOK, []string{}},
		{"/api/audit-logs", http.StatusInternalServerError, []string{entity.ActionError}},
		{"/api/audit-logs/export", http.StatusForbidden, []string{entity.ActionAccess, entity.ActionError}},
		{"/static/app.js", http.StatusInternalServerError, []string{}},
		{"/healthz", http.StatusOK, []string{}},
	}
	for _, tc := range cases {
		rec := &recordingLogger{}
		r := auditedEngine(rec)
		status := tc.status
		r.GET(tc.path, func(c *gin.Context) { c.Status(status) })

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.want, rec.actions(), "%s %d", tc.path, tc.status)
	}
}

func TestAuditTrailErrorDescription(t *testing.T) {
	rec := &recordingLogger{}
	r := auditedEngine(rec)
	r.GET("/api/audit-logs/export", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/audit-logs/export?module=auth", nil))

	require.Len(t, rec.entries, 2)
	a := rec.entries[1]
	assert.Equal(t, entity.ActionError, a.Action)
	assert.Equal(t, "logs", a.Module)
	assert.Equal(t, "GET /api/audit-logs/export - Status 403", a.Description)
	assert.Equal(t, "module=auth", a.ExtraData.(map[string]any)["query_string"])
}

func TestAuditTrailLogsPanicAndRethrows(t *testing.T) {
	rec := &recordingLogger{}
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(RequestContext(), AuditTrail(rec))
	r.DELETE("/api/tickets/:id", func(c *gin.Context) { panic("db gone") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/tickets/9", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, []string{entity.ActionAccess, entity.ActionError}, rec.actions())
	a := rec.entries[1]
	assert.Equal(t, entity.ActionError, a.Action)
	assert.Equal(t, "chamados", a.Module)
	extra := a.ExtraData.(map[string]any)
	assert.Equal(t, "db gone", extra["exception_message"])
	assert.Equal(t, "/api/tickets/9", extra["path"])
	assert.Equal(t, http.MethodDelete, extra["method"])
}

func TestRequestIDKeepsOrReplaces(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())

	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(CurrentUserKey, entity.User{ID: 1, Role: role, Active: true})
		}
		c.Next()
	})
	r.GET("/admin", RequireRole(entity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := map[string]int{
		"":                    http.StatusUnauthorized,
		entity.RoleTechnician: http.StatusForbidden,
		entity.RoleAdmin:      http.StatusNoContent,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestIdempotencyHashesBody(t *testing.T) {
	r := gin.New()
	r.POST("/", Idempotency(), func(c *gin.Context) {
		body := make([]byte, 64)
		n, _ := c.Request.Body.Read(body)
		c.JSON(http.StatusOK, gin.H{
			"key":  c.GetString(IdempotencyKeyCtx),
			"hash": c.GetString(IdempotencyHashCtx),
			"body": string(body[:n]),
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	req.Header.Set("Idempotency-Key", "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"k1"`)
	assert.Contains(t, w.Body.String(), `"body":"{\"a\":1}"`)
	assert.NotContains(t, w.Body.String(), `"hash":""`)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", strings.Repeat("k", 129))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
