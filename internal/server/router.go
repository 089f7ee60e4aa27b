package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/audifyai/callaudit-backend/internal/http/handlers"
	"github.com/audifyai/callaudit-backend/internal/http/middleware"
	"github.com/audifyai/callaudit-backend/internal/http/response"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	CORSOrigins       []string
	HealthHandler     *handlers.HealthHandler
	ParametersHandler *handlers.ParametersHandler
	UploadHandler     *handlers.UploadHandler
	AuditHandler      *handlers.AuditHandler
	EventsHandler     *handlers.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("callaudit-backend"))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/", func(c *gin.Context) {
		response.RespondOK(c, gin.H{
			"message": "AudifyAI Call Audit API",
			"version": "1.0.0",
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/health", cfg.HealthHandler.HealthCheck)
		api.GET("/config", cfg.HealthHandler.GetConfig)
		api.GET("/parameters", cfg.ParametersHandler.ListParameters)
		api.POST("/upload", cfg.UploadHandler.UploadFiles)
		api.POST("/audit", cfg.AuditHandler.AuditFiles)
		api.POST("/audit/stream", cfg.AuditHandler.AuditFilesStream)
		api.GET("/events/stream", cfg.EventsHandler.Stream)
	}

	return router
}
