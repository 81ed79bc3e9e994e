package handlers

import (
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	handler *Handler
}

func NewRouter(handler *Handler) *Router {
	RegisterValidators()
	return &Router{handler: handler}
}

func (r *Router) RegisterRoutes(engine *gin.Engine) {
	h := r.handler
	engine.GET("/healthz", h.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)

	tickets := api.Group("/tickets", middleware.RequireSession())
	tickets.POST("", middleware.Idempotency(), h.createTicket)
	tickets.GET("/:id", h.getTicket)
	tickets.POST("/:id/replies", h.replyTicket)
	tickets.POST("/:id/claim", middleware.RequireRole(entity.StaffRoles...), h.claimTicket)
	tickets.POST("/:id/assign", middleware.RequireRole(entity.RoleAdmin), h.assignTicket)
	tickets.POST("/:id/close", middleware.RequireRole(entity.StaffRoles...), h.closeTicket)
	tickets.DELETE("/:id", middleware.RequireRole(entity.StaffRoles...), h.deleteTicket)

	notifications := api.Group("/notifications", middleware.RequireSession())
	notifications.GET("", h.listNotifications)
	notifications.GET("/unread-count", h.unreadCount)
	notifications.POST("/read-all", h.markAllRead)
	notifications.POST("/:id/read", h.markRead)

	audit := api.Group("/audit-logs", middleware.RequireRole(entity.RoleAdmin))
	audit.GET("", h.listAuditLogs)
	audit.GET("/stats", h.auditStats)
	audit.GET("/export", h.exportAuditLogs)
	audit.GET("/:id", h.getAuditLog)

	companies := api.Group("/companies", middleware.RequireRole(entity.StaffRoles...))
	companies.POST("", h.createCompany)
	companies.GET("", h.listCompanies)
	companies.GET("/:id", h.getCompany)
	companies.PUT("/:id", h.updateCompany)
	companies.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.deactivateCompany)

	users := api.Group("/users", middleware.RequireRole(entity.RoleAdmin))
	users.POST("", h.createUser)
	users.GET("", h.listUsers)
	users.GET("/:id", h.getUser)
	users.PUT("/:id", h.updateUser)
	users.DELETE("/:id", h.deactivateUser)
}
