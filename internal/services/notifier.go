package services

import (
	"context"

	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/progress"
	"github.com/audifyai/callaudit-backend/internal/realtime/bus"
	"github.com/audifyai/callaudit-backend/internal/sse"
)

// AuditNotifier fans a job's progress events out to watchers: the local SSE
// hub always, and the cross-instance bus when one is configured.
type AuditNotifier interface {
	Notify(ctx context.Context, jobID string, ev progress.Event)
}

type auditNotifier struct {
	log *logger.Logger
	hub *sse.Hub
	bus bus.Bus
}

func NewAuditNotifier(hub *sse.Hub, b bus.Bus, baseLog *logger.Logger) AuditNotifier {
	return &auditNotifier{
		log: baseLog.With("service", "AuditNotifier"),
		hub: hub,
		bus: b,
	}
}

func (n *auditNotifier) Notify(ctx context.Context, jobID string, ev progress.Event) {
	msg := sse.Message{Channel: jobID, Event: ev}
	n.hub.Broadcast(msg)
	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("Bus publish failed", "job_id", jobID, "event", ev.Type, "error", err)
		}
	}
}
