package resource

import (
	"context"
	"slices"
)

// Fetch is one list load. Beginning a new fetch on the same Collection cancels
// this one, after which Commit and Done are no-ops.
type Fetch[T Entity] struct {
	c      *Collection[T]
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// BeginFetch cancels any in-flight fetch and starts a new one.
func (c *Collection[T]) BeginFetch(ctx context.Context) *Fetch[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	return &Fetch[T]{c: c, gen: c.gen, ctx: fctx, cancel: cancel}
}

// Context is canceled when the fetch is superseded.
func (f *Fetch[T]) Context() context.Context {
	return f.ctx
}

// Current reports whether no newer fetch has started.
func (f *Fetch[T]) Current() bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.gen == f.c.gen
}

// Commit stores items if the fetch is still current and reports whether it did.
// onCommit, if non-nil, runs under the collection lock together with the store.
func (f *Fetch[T]) Commit(items []T, onCommit func()) bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if f.gen != f.c.gen {
		return false
	}
	f.c.items = slices.Clone(items)
	if onCommit != nil {
		onCommit()
	}
	return true
}

// Done ends the fetch. The loading flag is cleared only by the current fetch.
func (f *Fetch[T]) Done() {
	f.c.mu.Lock()
	if f.gen == f.c.gen {
		f.c.loading = false
		f.c.cancel = nil
	}
	f.c.mu.Unlock()
	f.cancel()
}

// Load runs fn as a superseding fetch and commits its result.
// It returns ErrSuperseded when a newer fetch started before fn returned.
func (c *Collection[T]) Load(ctx context.Context, fn func(ctx context.Context) ([]T, error), onCommit func()) error {
	f := c.BeginFetch(ctx)
	defer f.Done()

	items, err := fn(f.Context())
	if !f.Current() {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	if !f.Commit(items, onCommit) {
		return ErrSuperseded
	}
	return nil
}
