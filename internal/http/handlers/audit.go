package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/http/response"
	"github.com/audifyai/callaudit-backend/internal/platform/ctxutil"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/progress"
	"github.com/audifyai/callaudit-backend/internal/services"
)

type AuditHandler struct {
	log      *logger.Logger
	files    services.FileService
	audits   services.AuditService
	notifier services.AuditNotifier
}

func NewAuditHandler(log *logger.Logger, files services.FileService, audits services.AuditService, notifier services.AuditNotifier) *AuditHandler {
	return &AuditHandler{
		log:      log.With("handler", "AuditHandler"),
		files:    files,
		audits:   audits,
		notifier: notifier,
	}
}

// POST /api/v1/audit
//
// The synchronous path: blocks until every file is audited, then returns the
// whole result document at once.
func (h *AuditHandler) AuditFiles(c *gin.Context) {
	req, fileHeaders, err := h.parseSubmission(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	saved, err := h.files.ValidateAndSave(fileHeaders)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", err)
		return
	}
	defer h.files.Cleanup(saved)

	auditID := uuid.New().String()
	ctx := ctxutil.WithAuditID(c.Request.Context(), auditID)
	c.Request = c.Request.WithContext(ctx)
	resp := h.audits.Run(ctx, auditID, saved, req, func(ev progress.Event) {
		h.notifier.Notify(ctx, auditID, ev)
	})
	response.RespondOK(c, resp)
}

// POST /api/v1/audit/stream
//
// The streaming path: the same job, but each progress event is written as
// one frame over the open response and flushed immediately.
func (h *AuditHandler) AuditFilesStream(c *gin.Context) {
	req, fileHeaders, err := h.parseSubmission(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	saved, err := h.files.ValidateAndSave(fileHeaders)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", err)
		return
	}
	defer h.files.Cleanup(saved)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported",
			fmt.Errorf("response writer does not support streaming"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	auditID := uuid.New().String()
	ctx := ctxutil.WithAuditID(c.Request.Context(), auditID)
	c.Request = c.Request.WithContext(ctx)
	h.audits.Run(ctx, auditID, saved, req, func(ev progress.Event) {
		h.notifier.Notify(ctx, auditID, ev)
		if ctx.Err() != nil {
			// Client went away; keep the job's notifier path alive but stop
			// writing to a dead connection.
			return
		}
		frame, err := progress.EncodeFrame(ev)
		if err != nil {
			h.log.Warn("Failed to encode progress frame", "audit_id", auditID, "event", ev.Type, "error", err)
			return
		}
		if _, err := c.Writer.Write(frame); err != nil {
			h.log.Debug("Stream write failed", "audit_id", auditID, "error", err)
			return
		}
		flusher.Flush()
	})
}

func (h *AuditHandler) parseSubmission(c *gin.Context) (domain.AuditRequest, []*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.AuditRequest{}, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	rawReq := c.PostForm("request")
	if rawReq == "" {
		return domain.AuditRequest{}, nil, fmt.Errorf("missing request field")
	}
	var req domain.AuditRequest
	if err := json.Unmarshal([]byte(rawReq), &req); err != nil {
		return domain.AuditRequest{}, nil, fmt.Errorf("invalid JSON in request field: %w", err)
	}
	if len(req.Parameters) == 0 {
		return domain.AuditRequest{}, nil, fmt.Errorf("at least one audit parameter is required")
	}

	return req, form.File["files"], nil
}
