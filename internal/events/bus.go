package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives events from the bus
type Handler func(e *Event)

type subscription struct {
	id      uint64
	typ     EventType // empty = all types
	handler Handler
}

// Bus is an in-process publish/subscribe hub.
// Handlers run synchronously on the emitting goroutine, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	log    zerolog.Logger
}

// NewBus creates an empty event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		log: log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for one event type and returns its subscription id.
func (b *Bus) Subscribe(eventType EventType, handler Handler) uint64 {
	return b.add(eventType, handler)
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) uint64 {
	return b.add("", handler)
}

func (b *Bus) add(eventType EventType, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, typ: eventType, handler: handler})
	return b.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Listen returns a buffered channel receiving every event and a function that ends the
// subscription. Events are dropped for a listener whose buffer is full.
func (b *Bus) Listen(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	var once sync.Once
	var closed bool
	var mu sync.Mutex

	id := b.SubscribeAll(func(e *Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- *e:
		default:
			b.log.Warn().Str("event_type", string(e.Type)).Msg("Listener buffer full, dropping event")
		}
	})

	return ch, func() {
		once.Do(func() {
			b.Unsubscribe(id)
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
}

// Emit publishes an event to every matching subscriber.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	e := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Module:    module,
		Data:      data,
	}

	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.typ == "" || s.typ == eventType {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(e)
	}
}
