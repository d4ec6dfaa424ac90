package resource

import (
	"context"
	"slices"
)

// Mutation is an optimistic change to a Collection.
// Apply and Revert receive a copy of the current items and return the new items.
// Revert runs only if Request fails, against whatever the items are by then,
// so it should undo just this mutation's own change.
type Mutation[T Entity] struct {
	Apply   func(items []T) []T
	Revert  func(items []T) []T
	Request func(ctx context.Context) error
}

// Optimistic applies m locally, sends its request, and reverts on failure.
// The request error is returned unchanged.
func (c *Collection[T]) Optimistic(ctx context.Context, m Mutation[T]) error {
	c.mu.Lock()
	c.items = m.Apply(slices.Clone(c.items))
	c.mu.Unlock()

	if err := m.Request(ctx); err != nil {
		c.mu.Lock()
		c.items = m.Revert(slices.Clone(c.items))
		c.mu.Unlock()
		return err
	}
	return nil
}

// Remove builds a mutation that drops the item with id and, on failure,
// puts it back at its original position.
func Remove[T Entity](id ID, request func(ctx context.Context) error) Mutation[T] {
	var removed T
	at := -1
	return Mutation[T]{
		Apply: func(items []T) []T {
			at = indexOf(items, id)
			if at < 0 {
				return items
			}
			removed = items[at]
			return slices.Delete(items, at, at+1)
		},
		Revert: func(items []T) []T {
			if at < 0 || indexOf(items, id) >= 0 {
				return items
			}
			return slices.Insert(items, min(at, len(items)), removed)
		},
		Request: request,
	}
}

// Update builds a mutation that replaces the item with id by change(item) and,
// on failure, restores the item as it was at dispatch time.
// The request receives the updated item. If id is not loaded, Apply is a no-op
// and the request receives the zero value with found false.
func Update[T Entity](id ID, change func(T) T, request func(ctx context.Context, updated T, found bool) error) Mutation[T] {
	var before, after T
	found := false
	return Mutation[T]{
		Apply: func(items []T) []T {
			i := indexOf(items, id)
			if i < 0 {
				return items
			}
			found = true
			before = items[i]
			after = change(before)
			items[i] = after
			return items
		},
		Revert: func(items []T) []T {
			if !found {
				return items
			}
			if i := indexOf(items, id); i >= 0 {
				items[i] = before
			}
			return items
		},
		Request: func(ctx context.Context) error {
			return request(ctx, after, found)
		},
	}
}

// Insert builds a mutation that appends a provisional item and removes it on failure.
func Insert[T Entity](provisional T, request func(ctx context.Context) error) Mutation[T] {
	id := provisional.EntityID()
	return Mutation[T]{
		Apply: func(items []T) []T {
			return append(items, provisional)
		},
		Revert: func(items []T) []T {
			if i := indexOf(items, id); i >= 0 {
				return slices.Delete(items, i, i+1)
			}
			return items
		},
		Request: request,
	}
}
