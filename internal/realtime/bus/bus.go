package bus

import (
	"context"

	"github.com/audifyai/callaudit-backend/internal/sse"
)

// Bus carries hub messages between instances so a browser subscribed on one
// replica still sees events from a job running on another.
type Bus interface {
	Publish(ctx context.Context, msg sse.Message) error
	StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error
	Close() error
}
