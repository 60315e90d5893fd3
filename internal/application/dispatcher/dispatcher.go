package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/domain/event"
)

// Dispatcher routes domain events to registered handlers. Workflow code emits
// events through DispatchAsync so side-effect failures stay out of the
// transition's critical path.
type Dispatcher interface {
	// Subscribe registers a named handler for an event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// Dispatch runs handlers synchronously in registration order and returns
	// the first error encountered
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs handlers in the background without waiting.
	// Handler errors are logged, never returned.
	DispatchAsync(ctx context.Context, evt *event.Event)

	// Close stops accepting events and waits for in-flight async handlers
	Close() error
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	logger   *zap.Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// New creates an event dispatcher
func New(logger *zap.Logger) Dispatcher {
	return &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
		logger:   logger,
	}
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})

	d.logger.Info("Event handler registered",
		zap.String("event_type", eventType.String()),
		zap.String("handler", name))
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}

	d.mu.RLock()
	handlers := d.handlers[evt.Type]
	d.mu.RUnlock()

	for _, info := range handlers {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.logger.Error("Event handler failed",
				zap.String("event_type", evt.Type.String()),
				zap.String("event_id", evt.ID),
				zap.String("handler", info.Name),
				zap.Error(err))
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}

	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		d.logger.Warn("Dropping event, dispatcher is closed",
			zap.String("event_type", evt.Type.String()),
			zap.String("event_id", evt.ID))
		return
	}

	d.mu.RLock()
	handlers := d.handlers[evt.Type]
	d.mu.RUnlock()

	for _, info := range handlers {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()

			if err := d.safeExecute(ctx, evt, h); err != nil {
				d.logger.Error("Async event handler failed",
					zap.String("event_type", evt.Type.String()),
					zap.String("event_id", evt.ID),
					zap.Int64("application_id", evt.ApplicationID),
					zap.String("handler", h.Name),
					zap.Error(err))
			}
		}(info)
	}
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}

	d.wg.Wait()
	d.logger.Info("Dispatcher closed")
	return nil
}

// safeExecute runs a handler with panic recovery so a misbehaving side effect
// cannot take down the process
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return info.Handler(ctx, evt)
}
