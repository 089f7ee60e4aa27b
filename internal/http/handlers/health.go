package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/audifyai/callaudit-backend/internal/app"
	"github.com/audifyai/callaudit-backend/internal/http/response"
)

const apiVersion = "1.0.0"

type HealthHandler struct {
	cfg app.Config
}

func NewHealthHandler(cfg app.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// GET /api/v1/health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   apiVersion,
	})
}

// GET /api/v1/config
func (h *HealthHandler) GetConfig(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"max_file_size":         h.cfg.MaxFileSize,
		"allowed_formats":       h.cfg.AllowedAudioFormats,
		"max_files_per_request": h.cfg.MaxFilesPerRequest,
		"gemini_model":          h.cfg.GeminiModel,
		"api_key_configured":    h.cfg.GoogleAPIKey != "",
	})
}
