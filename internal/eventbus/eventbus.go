// ABOUTME: Typed event bus delivering to subscribers in subscription order
// ABOUTME: Session state changes flow through it to the footer and monitor output

package eventbus

import "sync"

// Handler is a callback function for events.
type Handler[T any] func(T)

type subscriber[T any] struct {
	id int
	h  Handler[T]
}

// Bus is a typed event bus. Publish is synchronous; handlers must not block
// for long and must not publish on the same bus re-entrantly while holding
// their own locks.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID int
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber[T]{id: id, h: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers event to every handler in subscription order and returns
// how many handlers saw it. A nil bus drops the event.
func (b *Bus[T]) Publish(event T) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.h
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
	return len(snapshot)
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
