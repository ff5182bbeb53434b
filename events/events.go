// Package events defines the order lifecycle events the engine emits and the
// sink that consumes them.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

type Kind string

// Kind values double as the realtime notification type.
const (
	NewOrder      Kind = "new_order"
	StatusChanged Kind = "order_status"
	OrderReady    Kind = "order_ready"
)

type Event struct {
	Kind      Kind
	Order     models.Order
	OldStatus models.OrderStatus
	NewStatus models.OrderStatus
	// Owner is the tenant record, when the engine could load it.
	Owner     *models.User
	At        time.Time
	RequestID string
}

// Sink receives events after the lifecycle write has committed. Publish must
// not block on delivery and has no error to report.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

type SinkFunc func(ctx context.Context, ev Event)

func (f SinkFunc) Publish(ctx context.Context, ev Event) { f(ctx, ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})

// Recorder keeps every published event. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Kinds() []Kind {
	evs := r.Events()
	out := make([]Kind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}
