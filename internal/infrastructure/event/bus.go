package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/erp/fulfillment/internal/domain/shared"
	"go.uber.org/zap"
)

// Default worker pool sizing used when the bus is built without options
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 1000
)

// ErrBusStopped is returned by Start on a bus that was already stopped
var ErrBusStopped = errors.New("event bus stopped")

// envelope is one queued delivery of an event to the handlers subscribed to it
type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus implements EventBus with in-memory pub/sub.
//
// Before Start, Publish dispatches synchronously in the caller's goroutine.
// Once started, events are queued and delivered by a pool of workers so
// publishers are never blocked by slow subscribers; handler failures are
// logged and never reach the publisher. When the queue is full the event is
// delivered inline instead of being dropped.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	workers   int
	queueSize int

	mu      sync.RWMutex
	queue   chan envelope
	running atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithWorkers sets the number of delivery workers
func WithWorkers(n int) BusOption {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize sets the capacity of the delivery queue
func WithQueueSize(n int) BusOption {
	return func(b *InMemoryEventBus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:  NewHandlerRegistry(),
		logger:    logger,
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their subscribers. It never reports handler errors.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	// delivery outlives the request that produced the events
	detached := context.WithoutCancel(ctx)

	var inline []shared.DomainEvent
	b.mu.RLock()
	for _, event := range events {
		if event == nil {
			continue
		}
		if !b.running.Load() {
			inline = append(inline, event)
			continue
		}
		select {
		case b.queue <- envelope{ctx: detached, event: event}:
		default:
			b.logger.Warn("event queue full, delivering inline",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
			)
			inline = append(inline, event)
		}
	}
	b.mu.RUnlock()

	for _, event := range inline {
		b.deliver(detached, event)
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the delivery workers
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running.Load() {
		return nil
	}

	b.queue = make(chan envelope, b.queueSize)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.work(b.queue)
	}
	b.running.Store(true)
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("queue_size", b.queueSize),
	)
	return nil
}

// Stop closes the queue and waits for queued events to be delivered, or
// for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.stopped.Store(true)
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	b.stopped.Store(true)
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with events pending")
		return ctx.Err()
	}
}

// Pending returns the number of queued events not yet picked up by a worker
func (b *InMemoryEventBus) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.queue == nil {
		return 0
	}
	return len(b.queue)
}

func (b *InMemoryEventBus) work(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.deliver(env.ctx, env.event)
	}
}

// deliver runs every handler subscribed to the event
func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
