package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyCtx  = "idempotency_key"
	IdempotencyHashCtx = "idempotency_hash"
)

// Idempotency hashes the body when the caller sends an Idempotency-Key so
// a replay can be told apart from a conflicting reuse of the key.
func Idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			key = c.GetHeader("X-Idempotency-Key")
		}
		if key == "" {
			c.Set(IdempotencyKeyCtx, "")
			c.Set(IdempotencyHashCtx, "")
			c.Next()
			return
		}
		if len(key) > 128 {
			response.RespondError(c, nethttp.StatusBadRequest, "idempotency key too long")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.RespondError(c, nethttp.StatusBadRequest, "invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		sum := sha256.Sum256(body)
		c.Set(IdempotencyKeyCtx, key)
		c.Set(IdempotencyHashCtx, hex.EncodeToString(sum[:]))
		c.Next()
	}
}
