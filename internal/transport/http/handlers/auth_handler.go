package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/requestctx"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/middleware"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	session, user, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err, "login failed")
		return
	}
	if h.cookieName != "" {
		maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
		c.SetCookie(h.cookieName, session.ID, maxAge, "/", "", false, true)
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{
		"session_id": session.ID,
		"expires_at": session.ExpiresAt,
		"user":       user,
	}, nil)
}

func (h *Handler) logout(c *gin.Context) {
	id := middleware.SessionID(c, h.cookieName)
	if s, ok := requestctx.SessionFrom(c.Request.Context()); ok {
		id = s.ID
	}
	if err := h.svc.Auth.Logout(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err, "logout failed")
		return
	}
	if h.cookieName != "" {
		c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "logged_out"}, nil)
}
