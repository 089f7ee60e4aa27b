package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/audifyai/callaudit-backend/internal/http/response"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/sse"
)

type EventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewEventsHandler(log *logger.Logger, hub *sse.Hub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// GET /api/v1/events/stream?job_id=<id>[,<id>...]
//
// Opens an SSE connection subscribed to the given job channels. Events for a
// job submitted on another instance still arrive here via the realtime bus.
func (h *EventsHandler) Stream(c *gin.Context) {
	jobIDs := splitJobIDs(c.Query("job_id"))
	if len(jobIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_job_id",
			fmt.Errorf("job_id query parameter is required"))
		return
	}

	client := h.hub.NewClient()
	for _, id := range jobIDs {
		h.hub.Subscribe(client, id)
	}
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}

func splitJobIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
