package resource

import (
	"context"
	"slices"
	"sync"
)

// Collection is the local copy of a server collection.
type Collection[T Entity] struct {
	mu      sync.Mutex
	items   []T
	loading bool
	gen     uint64
	cancel  context.CancelFunc
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Replace sets the items without going through a fetch.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
}

// Swap replaces the item with id by item and reports whether id was present.
func (c *Collection[T]) Swap(id ID, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexOf(c.items, id)
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// Find returns the item with id and its index.
func (c *Collection[T]) Find(id ID) (T, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexOf(c.items, id)
	if i < 0 {
		var zero T
		return zero, -1, false
	}
	return c.items[i], i, true
}

// Loading reports whether a fetch is in flight.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func indexOf[T Entity](items []T, id ID) int {
	return slices.IndexFunc(items, func(it T) bool { return it.EntityID() == id })
}
