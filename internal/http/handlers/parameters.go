package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/http/response"
)

type ParametersHandler struct {
	catalog []domain.AuditParameter
}

func NewParametersHandler(catalog []domain.AuditParameter) *ParametersHandler {
	return &ParametersHandler{catalog: catalog}
}

// GET /api/v1/parameters
func (h *ParametersHandler) ListParameters(c *gin.Context) {
	response.RespondOK(c, gin.H{"parameters": h.catalog})
}
