package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/gin-gonic/gin"
)

// RequestContext binds the request facts used to stamp audit entries.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		req := requestctx.Request{
			ID:        c.GetString(RequestIDKey),
			Start:     time.Now().UTC(),
			IP:        ClientIP(c.Request),
			UserAgent: c.Request.UserAgent(),
			Endpoint:  endpoint,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
		}
		c.Request = c.Request.WithContext(requestctx.WithRequest(c.Request.Context(), req))
		c.Next()
	}
}

// ClientIP prefers X-Real-IP, then the first X-Forwarded-For hop, then the
// peer address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
