package response

import (
	"errors"
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
}

type Meta struct {
	NextCursor string `json:"next_cursor,omitempty"`
	Count      int    `json:"count"`
}

type APIResponse struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

func RespondOK(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, APIResponse{
		Data: data,
		Meta: meta,
	})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Error: &APIError{Message: message},
	})
}

// RespondErr maps domain errors to a status. Anything unknown is a 500 with
// a generic message.
func RespondErr(c *gin.Context, err error, fallback string) {
	status, message := StatusOf(err)
	if status == nethttp.StatusInternalServerError {
		_ = c.Error(err)
		message = fallback
	}
	RespondError(c, status, message)
}

func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nethttp.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrInvalidInput), errors.Is(err, repository.ErrInvalidCursor):
		return nethttp.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrInvalidCredentials):
		return nethttp.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, repository.ErrForbidden):
		return nethttp.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrIdempotencyKeyConflict),
		errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrTicketClosed),
		errors.Is(err, repository.ErrTicketAlreadyClaimed):
		return nethttp.StatusConflict, err.Error()
	default:
		return nethttp.StatusInternalServerError, "internal error"
	}
}
