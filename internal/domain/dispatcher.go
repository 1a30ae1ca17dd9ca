package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"landledger.io/registry/internal/pkg/logger"
)

// EventHandler processes a domain event.
type EventHandler func(ctx context.Context, event *DomainEvent) error

// Publisher is what services depend on to emit events after commit.
type Publisher interface {
	Dispatch(ctx context.Context, event *DomainEvent) error
}

// EventDispatcher routes domain events to registered handlers.
// Events describe committed facts; handlers never affect the transaction
// that produced them.
type EventDispatcher struct {
	handlers map[EventType][]EventHandler
	mu       sync.RWMutex
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Register registers a handler for a specific event type.
func (d *EventDispatcher) Register(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// RegisterAll registers a handler for every known event type.
func (d *EventDispatcher) RegisterAll(handler EventHandler) {
	for _, et := range AllEventTypes {
		d.Register(et, handler)
	}
}

// Dispatch dispatches an event to all registered handlers.
// All handlers are called sequentially. If any handler fails, the error is logged
// but remaining handlers are still executed (best-effort delivery).
func (d *EventDispatcher) Dispatch(ctx context.Context, event *DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventType]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("No handlers registered for event type",
			zap.String("event_type", string(event.EventType)),
			zap.String("event_id", event.EventID),
		)
		return nil
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.FromContext(ctx).Error("Event handler failed",
				zap.String("event_type", string(event.EventType)),
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("handler for %s failed: %w", event.EventType, err)
			}
		}
	}

	return firstErr
}

// NewEvent builds a DomainEvent with a v7 id.
func NewEvent(eventType EventType, aggregateType, aggregateID, createdBy string, payload []byte) *DomainEvent {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &DomainEvent{
		EventID:       "evt-" + id.String(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       payload,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
	}
}

// NopPublisher discards events.
type NopPublisher struct{}

// Dispatch implements Publisher.
func (NopPublisher) Dispatch(context.Context, *DomainEvent) error { return nil }
