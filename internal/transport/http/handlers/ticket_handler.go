package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/middleware"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

type createTicketRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,ticket_priority"`
	CompanyID   *uint  `json:"company_id"`
}

func (h *Handler) createTicket(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	ticket, replayed, err := h.svc.Tickets.Create(c.Request.Context(), user.ID, service.NewTicket{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CompanyID:   req.CompanyID,
	}, c.GetString(middleware.IdempotencyKeyCtx), c.GetString(middleware.IdempotencyHashCtx))
	if err != nil {
		response.RespondErr(c, err, "create failed")
		return
	}
	if replayed {
		response.RespondOK(c, nethttp.StatusOK, ticket, nil)
		return
	}
	response.RespondOK(c, nethttp.StatusCreated, ticket, nil)
}

func (h *Handler) getTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	ticket, err := h.svc.Tickets.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		response.RespondErr(c, err, "get failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, ticket, nil)
}

type replyRequest struct {
	Body   string `json:"body" binding:"required"`
	Status string `json:"status" binding:"omitempty,ticket_status"`
}

func (h *Handler) replyTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	user, _ := middleware.CurrentUser(c)
	reply, err := h.svc.Tickets.Reply(c.Request.Context(), user.ID, id, req.Body, req.Status)
	if err != nil {
		response.RespondErr(c, err, "reply failed")
		return
	}
	response.RespondOK(c, nethttp.StatusCreated, reply, nil)
}

func (h *Handler) claimTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	ticket, err := h.svc.Tickets.Claim(c.Request.Context(), user.ID, id)
	if err != nil {
		response.RespondErr(c, err, "claim failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, ticket, nil)
}

type assignRequest struct {
	AssigneeID uint `json:"assignee_id" binding:"required"`
}

func (h *Handler) assignTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	user, _ := middleware.CurrentUser(c)
	ticket, err := h.svc.Tickets.Assign(c.Request.Context(), user.ID, id, req.AssigneeID)
	if err != nil {
		response.RespondErr(c, err, "assign failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, ticket, nil)
}

type closeRequest struct {
	Message string `json:"message"`
}

func (h *Handler) closeTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req closeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, nethttp.StatusBadRequest, err.Error())
			return
		}
	}
	user, _ := middleware.CurrentUser(c)
	ticket, err := h.svc.Tickets.Close(c.Request.Context(), user.ID, id, req.Message)
	if err != nil {
		response.RespondErr(c, err, "close failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, ticket, nil)
}

func (h *Handler) deleteTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	if err := h.svc.Tickets.Delete(c.Request.Context(), user.ID, id); err != nil {
		response.RespondErr(c, err, "delete failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"deleted": id}, nil)
}
