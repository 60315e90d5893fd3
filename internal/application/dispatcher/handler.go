package dispatcher

import (
	"context"

	"github.com/yashturmbekar/pmcrms/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo pairs a handler with its registration name for logging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
