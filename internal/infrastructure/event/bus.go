// Package event delivers domain events to in-process subscribers, such
// as the fiscal audit trail handler.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/angofact/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// catchAll is the subscription key for handlers that want every event.
const catchAll = ""

// InMemoryEventBus dispatches events synchronously inside the publishing
// goroutine. A failing subscriber is logged and skipped; certification
// must not roll back because an audit handler misbehaved.
type InMemoryEventBus struct {
	mu      sync.RWMutex
	subs    map[string][]shared.EventHandler
	logger  *zap.Logger
	running atomic.Bool
}

// NewInMemoryEventBus creates an empty bus.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subs:   make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

// Publish hands each event to every matching subscriber in subscription
// order. Subscriber errors are logged, never returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit types the handler's own
// EventTypes decide; an empty list subscribes it to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	if len(eventTypes) == 0 {
		eventTypes = []string{catchAll}
	}

	b.mu.Lock()
	for _, t := range eventTypes {
		b.subs[t] = append(b.subs[t], handler)
	}
	b.mu.Unlock()

	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes the handler from every event type.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	for t, handlers := range b.subs {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(b.subs, t)
		} else {
			b.subs[t] = kept
		}
	}
	b.mu.Unlock()

	b.logger.Debug("event handler unsubscribed")
}

// Start marks the bus as running.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop marks the bus as stopped.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// handlersFor returns the type-specific subscribers followed by the
// catch-all subscribers.
func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.subs[eventType]
	all := b.subs[catchAll]
	result := make([]shared.EventHandler, 0, len(typed)+len(all))
	result = append(result, typed...)
	result = append(result, all...)
	return result
}

// dispatch runs a single handler, turning a panic into a logged failure.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
