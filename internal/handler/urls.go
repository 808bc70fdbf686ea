package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/config"
	"github.com/voxkit/voxconsole/pkg/middleware"
)

func (h *Handlers) Register(engine *gin.Engine) {
	r := engine.Group(config.GlobalConfig.APIPrefix)

	// Register Global Singleton DB
	r.Use(middleware.InjectDB(h.db))

	// Business Module Routes
	h.registerAuthRoutes(r)
	h.registerTenantRoutes(r)
	h.registerSipUserRoutes(r)
	h.registerLogRoutes(r)
	h.registerCallFlowRoutes(r)
	h.registerSystemRoutes(r)
}

// registerAuthRoutes User Module
func (h *Handlers) registerAuthRoutes(r *gin.RouterGroup) {
	auth := r.Group(config.GlobalConfig.AuthPrefix)
	{
		auth.POST("/register", h.handleUserSignup)
		auth.POST("/login", h.handleUserSignin)
		auth.GET("/logout", models.AuthRequired, h.handleUserLogout)
		auth.GET("/info", models.AuthRequired, h.handleUserInfo)
		auth.POST("/password", models.AuthRequired, h.handleChangePassword)
	}
}

// registerTenantRoutes Tenant Module
func (h *Handlers) registerTenantRoutes(r *gin.RouterGroup) {
	tenants := r.Group("/tenants", models.AuthRequired)
	{
		tenants.GET("", h.handleListTenants)
		tenants.POST("", h.handleCreateTenant)
		tenants.GET("/:id", h.handleGetTenant)
		tenants.PATCH("/:id", h.handleUpdateTenant)
		tenants.DELETE("/:id", h.handleDeleteTenant)

		tenants.GET("/:id/members", h.handleListTenantMembers)
		tenants.POST("/:id/invitations", h.handleCreateInvitation)
		tenants.POST("/:id/invitations/:invitationId/accept", h.handleAcceptInvitation)
		tenants.POST("/:id/invitations/:invitationId/reject", h.handleRejectInvitation)
		tenants.DELETE("/:id/members/:userId", h.handleRemoveTenantMember)
	}
}

// registerSipUserRoutes SIP endpoint Module
func (h *Handlers) registerSipUserRoutes(r *gin.RouterGroup) {
	sipUsers := r.Group("/tenants/:id/sip-users", models.AuthRequired)
	{
		sipUsers.GET("", h.handleListSipUsers)
		sipUsers.POST("", h.handleCreateSipUser)
		sipUsers.GET("/:sipUserId", h.handleGetSipUser)
		sipUsers.PATCH("/:sipUserId", h.handleUpdateSipUser)
		sipUsers.DELETE("/:sipUserId", h.handleDeleteSipUser)
	}
}

// registerLogRoutes Log query Module
func (h *Handlers) registerLogRoutes(r *gin.RouterGroup) {
	logs := r.Group("/logs", models.AuthRequired)
	{
		logs.GET("/calls", h.handleQueryCalls)
		logs.GET("/events", h.handleQueryEvents)
		logs.POST("/retry", h.handleRetry)
		logs.GET("/events/ws", h.handleEventStream)
	}
}

// registerCallFlowRoutes Call flow Module
func (h *Handlers) registerCallFlowRoutes(r *gin.RouterGroup) {
	calls := r.Group("/calls", models.AuthRequired)
	{
		calls.GET("/:callId/flow", h.handleCallFlow)
		calls.GET("/:callId/flow.svg", h.handleCallFlowSVG)
		calls.GET("/:callId/details", h.handleCallDetails)
	}
}

// registerSystemRoutes System Module
func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("/system")
	{
		system.GET("/health", h.handleHealth)
		system.GET("/status", models.AuthRequired, h.handleSystemStatus)
	}
}
