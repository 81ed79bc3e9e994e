package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

type companyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	CNPJ string `json:"cnpj" binding:"required,max=18"`
}

func (h *Handler) createCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	company, err := h.svc.Companies.Create(c.Request.Context(), service.CompanyInput{Name: req.Name, CNPJ: req.CNPJ})
	if err != nil {
		response.RespondErr(c, err, "create failed")
		return
	}
	response.RespondOK(c, nethttp.StatusCreated, company, nil)
}

func (h *Handler) listCompanies(c *gin.Context) {
	companies, err := h.svc.Companies.ListActive(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "list failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, companies, &response.Meta{Count: len(companies)})
}

func (h *Handler) getCompany(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	company, err := h.svc.Companies.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "get failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, company, nil)
}

func (h *Handler) updateCompany(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	company, err := h.svc.Companies.Update(c.Request.Context(), id, service.CompanyInput{Name: req.Name, CNPJ: req.CNPJ})
	if err != nil {
		response.RespondErr(c, err, "update failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, company, nil)
}

func (h *Handler) deactivateCompany(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	company, err := h.svc.Companies.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "deactivate failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, company, nil)
}
