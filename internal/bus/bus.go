// Package bus carries domain events between atendo components. Loaders,
// the ingestion engine, the outbox sender and the TUI never hold
// references to each other; they publish and subscribe here instead.
package bus

import (
	"strings"
	"sync"
	"time"
)

type listener struct {
	prefix string
	ch     chan Event
}

// Bus is an in-process publish/subscribe bus. Subscribers register a kind
// prefix; delivery is non-blocking and drops events for slow consumers.
type Bus struct {
	mu        sync.RWMutex
	listeners map[int]listener
	nextID    int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{listeners: make(map[int]listener)}
}

// Emit publishes an event of the given kind stamped with the current time.
func (b *Bus) Emit(kind string, payload any) {
	b.Publish(Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// Publish delivers evt to every listener whose prefix matches evt.Kind.
// A listener with a full buffer misses the event rather than blocking the
// publisher.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		if !strings.HasPrefix(evt.Kind, l.prefix) {
			continue
		}
		select {
		case l.ch <- evt:
		default:
		}
	}
}

// Subscribe registers a listener for event kinds starting with prefix. An
// empty prefix receives everything. The returned func removes the
// listener; the channel is never closed.
func (b *Bus) Subscribe(prefix string, buffer int) (<-chan Event, func()) {
	l := listener{prefix: prefix, ch: make(chan Event, buffer)}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
	return l.ch, cancel
}
