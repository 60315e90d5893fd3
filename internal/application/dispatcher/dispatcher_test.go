package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/domain/event"
)

func testEvent() *event.Event {
	return event.New(event.TypeStatusChanged, 1, map[string]interface{}{
		"from_status": "SUBMITTED",
		"to_status":   "JE_REVIEW_PENDING",
	})
}

func TestDispatchRunsHandlersInOrder(t *testing.T) {
	d := New(zap.NewNop())

	var order []string
	d.Subscribe(event.TypeStatusChanged, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(event.TypeStatusChanged, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})

	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran %v, want [first second]", order)
	}
}

func TestDispatchStopsOnError(t *testing.T) {
	d := New(zap.NewNop())
	wantErr := errors.New("smtp unreachable")

	var secondRan bool
	d.Subscribe(event.TypeStatusChanged, "failing", func(ctx context.Context, evt *event.Event) error {
		return wantErr
	})
	d.Subscribe(event.TypeStatusChanged, "after", func(ctx context.Context, evt *event.Event) error {
		secondRan = true
		return nil
	})

	err := d.Dispatch(context.Background(), testEvent())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
	if secondRan {
		t.Error("handlers after a failure must not run synchronously")
	}
}

func TestDispatchIgnoresOtherEventTypes(t *testing.T) {
	d := New(zap.NewNop())

	var ran bool
	d.Subscribe(event.TypePaymentCompleted, "receipt", func(ctx context.Context, evt *event.Event) error {
		ran = true
		return nil
	})

	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("handler for a different event type ran")
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	d := New(zap.NewNop())

	d.Subscribe(event.TypeStatusChanged, "panicking", func(ctx context.Context, evt *event.Event) error {
		panic("template rendering blew up")
	})

	err := d.Dispatch(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
}

func TestDispatchAsyncCompletesBeforeClose(t *testing.T) {
	d := New(zap.NewNop())

	var mu sync.Mutex
	var handled int
	d.Subscribe(event.TypeStatusChanged, "counter", func(ctx context.Context, evt *event.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 10; i++ {
		d.DispatchAsync(context.Background(), testEvent())
	}

	// Close waits for in-flight handlers
	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if handled != 10 {
		t.Errorf("handled %d events before close, want 10", handled)
	}
}

func TestDispatchAfterClose(t *testing.T) {
	d := New(zap.NewNop())

	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := d.Dispatch(context.Background(), testEvent()); err == nil {
		t.Error("expected error dispatching on a closed dispatcher")
	}
	if err := d.Close(); err == nil {
		t.Error("expected error on double close")
	}

	// async dispatch on a closed dispatcher drops the event silently
	d.DispatchAsync(context.Background(), testEvent())
}
