package middleware

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.RespondError(c, nethttp.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.RespondError(c, nethttp.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		response.RespondError(c, nethttp.StatusForbidden, "forbidden")
		c.Abort()
	}
}
