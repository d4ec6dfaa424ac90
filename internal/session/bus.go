package session

import (
	"slices"
	"sync"
)

// LogoutEvent is broadcast when the session is ended outside the Controller,
// e.g. by a failed token refresh.
type LogoutEvent struct {
	// Silent suppresses the user-visible logout notice.
	Silent bool
}

// Bus is the publish/subscribe channel for logout events.
// It satisfies apiclient.LogoutPublisher.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(LogoutEvent)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(LogoutEvent))}
}

// Subscribe registers fn and returns a func that removes it.
func (b *Bus) Subscribe(fn func(LogoutEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// PublishLogout delivers a LogoutEvent to every subscriber in subscription order.
// Subscribers run synchronously on the caller's goroutine.
func (b *Bus) PublishLogout(silent bool) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	fns := make([]func(LogoutEvent), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	ev := LogoutEvent{Silent: silent}
	for _, fn := range fns {
		fn(ev)
	}
}

