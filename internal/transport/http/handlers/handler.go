package handlers

import (
	nethttp "net/http"
	"strconv"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/service"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Companies     service.CompanyService
	Tickets       service.TicketService
	Notifications service.NotificationService
	Audit         service.AuditService
}

type Handler struct {
	svc        Services
	store      repository.Store
	cookieName string
	log        *logrus.Logger
}

func NewHandler(svc Services, store repository.Store, cookieName string, log *logrus.Logger) *Handler {
	return &Handler{
		svc:        svc,
		store:      store,
		cookieName: cookieName,
		log:        log,
	}
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.RespondOK(c, nethttp.StatusServiceUnavailable, gin.H{"status": "down"}, nil)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "ok"}, nil)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, nethttp.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func limitQuery(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}
