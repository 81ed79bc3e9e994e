package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/middleware"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listNotifications(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	unread := c.Query("unread") == "true"
	rows, next, err := h.svc.Notifications.List(c.Request.Context(), user.ID, unread, limitQuery(c), c.Query("cursor"))
	if err != nil {
		response.RespondErr(c, err, "list failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, rows, &response.Meta{NextCursor: next, Count: len(rows)})
}

func (h *Handler) unreadCount(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	n, err := h.svc.Notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondErr(c, err, "count failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"count": n}, nil)
}

func (h *Handler) markRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), user.ID, id); err != nil {
		response.RespondErr(c, err, "mark read failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "read"}, nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	n, err := h.svc.Notifications.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondErr(c, err, "mark read failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"updated": n}, nil)
}
