package handlers

import (
	"thermostat_triggers/internal/logger"
	"thermostat_triggers/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live execution feed (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerTriggerRoutes(api)
		h.registerDeviceRoutes(api)
		h.registerLogRoutes(api)
		h.registerSyncRoutes(api)
	}
}

func (h *Handler) registerTriggerRoutes(api *gin.RouterGroup) {
	triggers := api.Group("/triggers")
	{
		triggers.GET("/", h.listTriggers)
		triggers.POST("/", h.createTrigger)
		triggers.GET("/:id", h.getTrigger)
		triggers.PUT("/:id", h.updateTrigger)
		triggers.DELETE("/:id", h.deleteTrigger)
		triggers.POST("/:id/toggle", h.toggleTrigger)
		triggers.POST("/:id/execute", h.executeTrigger)
		triggers.GET("/:id/logs", h.listTriggerLogs)
		triggers.DELETE("/:id/logs", h.deleteTriggerLogs)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("/", h.listDevices)
		devices.GET("/:id", h.getDevice)
		devices.DELETE("/:id", h.deleteDevice)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.listLogs)
	}
}

func (h *Handler) registerSyncRoutes(api *gin.RouterGroup) {
	sync := api.Group("/sync")
	{
		sync.POST("/run", h.runSync)
	}
}
