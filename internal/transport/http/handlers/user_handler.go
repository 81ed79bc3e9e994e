package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"omitempty,user_role"`
	CompanyID *uint  `json:"company_id"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Users.Create(c.Request.Context(), service.NewUser{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		response.RespondErr(c, err, "create failed")
		return
	}
	response.RespondOK(c, nethttp.StatusCreated, user, nil)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "get failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, user, nil)
}

type updateUserRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Role      string `json:"role" binding:"required,user_role"`
	CompanyID *uint  `json:"company_id"`
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Users.Update(c.Request.Context(), id, service.UserUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		response.RespondErr(c, err, "update failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, user, nil)
}

// deactivateUser keeps the row so audit entries still resolve the name.
func (h *Handler) deactivateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "deactivate failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, user, nil)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, next, err := h.svc.Users.List(c.Request.Context(), limitQuery(c), c.Query("cursor"))
	if err != nil {
		response.RespondErr(c, err, "list failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, users, &response.Meta{NextCursor: next, Count: len(users)})
}
