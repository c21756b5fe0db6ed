package events

import (
	"sync"

	"skab-service/pkg/logger"
)

type Handler func(Event)

// Bus is a synchronous in-process publish/subscribe dispatcher. Handlers run
// on the publisher's goroutine; a panicking handler is logged and skipped so
// fanout failure never reaches the caller of the primary mutation.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	log      *logger.Logger
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event types.
func (b *Bus) Subscribe(h Handler, types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[e.EventType()]))
	copy(handlers, b.handlers[e.EventType()])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Event handler panicked", "type", string(e.EventType()), "panic", r)
		}
	}()
	h(e)
}
