package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/http/response"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/services"
)

type UploadHandler struct {
	log   *logger.Logger
	files services.FileService
}

func NewUploadHandler(log *logger.Logger, files services.FileService) *UploadHandler {
	return &UploadHandler{log: log.With("handler", "UploadHandler"), files: files}
}

// POST /api/v1/upload
func (h *UploadHandler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart", err)
		return
	}
	saved, err := h.files.ValidateAndSave(form.File["files"])
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", err)
		return
	}

	names := make([]string, 0, len(saved))
	for _, f := range saved {
		names = append(names, filepath.Base(f.Path))
	}
	response.RespondOK(c, domain.UploadResponse{
		Message:       fmt.Sprintf("Successfully uploaded %d files", len(saved)),
		UploadedFiles: names,
		TotalSize:     h.files.TotalSize(saved),
		FileCount:     len(saved),
	})
}
