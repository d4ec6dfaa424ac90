package resource

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     ID     `json:"id"`
	Status string `json:"status"`
}

func (i item) EntityID() ID { return i.ID }

var errBoom = errors.New("boom")

func seeded() *Collection[item] {
	c := &Collection[item]{}
	c.Replace([]item{{"1", "PENDING"}, {"42", "PENDING"}, {"7", "DONE"}})
	return c
}

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

type fakeAuth struct{ guest, authed bool }

func (a fakeAuth) IsGuest() bool         { return a.guest }
func (a fakeAuth) IsAuthenticated() bool { return a.authed }

func TestGuard(t *testing.T) {
	assert.NoError(t, Guard(fakeAuth{authed: true}, "delete task"))

	err := Guard(fakeAuth{guest: true}, "delete task")
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Contains(t, err.Error(), "guest mode")

	assert.ErrorIs(t, Guard(fakeAuth{}, "delete task"), ErrLoginRequired)
}

func TestID_JSON(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":42,"b":"tmp-x","c":null}`), &got))
	assert.Equal(t, ID("42"), got.A)
	assert.Equal(t, ID("tmp-x"), got.B)
	assert.Equal(t, ID(""), got.C)

	b, err := json.Marshal([]ID{"42", "tmp-x"})
	require.NoError(t, err)
	assert.JSONEq(t, `[42,"tmp-x"]`, string(b))
}

func TestOptimistic_RemoveRollback(t *testing.T) {
	c := seeded()
	before := c.Items()

	var during []item
	err := c.Optimistic(context.Background(), Remove[item]("42", func(context.Context) error {
		during = c.Items()
		return errBoom
	}))

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []item{{"1", "PENDING"}, {"7", "DONE"}}, during)
	assert.Equal(t, before, c.Items())
}

func TestOptimistic_RemoveSuccess(t *testing.T) {
	c := seeded()
	require.NoError(t, c.Optimistic(context.Background(), Remove[item]("42", ok)))
	assert.Equal(t, []item{{"1", "PENDING"}, {"7", "DONE"}}, c.Items())
}

func TestOptimistic_UpdateRollback(t *testing.T) {
	c := seeded()
	before := c.Items()

	var sent item
	err := c.Optimistic(context.Background(), Update[item]("42",
		func(it item) item { it.Status = "DONE"; return it },
		func(_ context.Context, updated item, found bool) error {
			assert.True(t, found)
			sent = updated
			return errBoom
		}))

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, item{"42", "DONE"}, sent)
	assert.Equal(t, before, c.Items())
}

func TestOptimistic_UpdateMissing(t *testing.T) {
	c := seeded()
	called := false
	err := c.Optimistic(context.Background(), Update[item]("99",
		func(it item) item { return it },
		func(_ context.Context, _ item, found bool) error {
			called = true
			assert.False(t, found)
			return nil
		}))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 3, c.Len())
}

func TestOptimistic_InsertRollback(t *testing.T) {
	c := seeded()
	before := c.Items()
	err := c.Optimistic(context.Background(), Insert(item{"tmp-1", "PENDING"}, fail))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, c.Items())
}

func TestCollection_SwapProvisional(t *testing.T) {
	c := seeded()
	require.NoError(t, c.Optimistic(context.Background(), Insert(item{"tmp-1", "PENDING"}, ok)))

	assert.True(t, c.Swap("tmp-1", item{"43", "PENDING"}))
	_, _, found := c.Find("tmp-1")
	assert.False(t, found)
	got, at, found := c.Find("43")
	require.True(t, found)
	assert.Equal(t, 3, at)
	assert.Equal(t, "PENDING", got.Status)

	assert.False(t, c.Swap("tmp-1", item{"44", "DONE"}))
	assert.Equal(t, 4, c.Len())
}

// A failing mutation only undoes its own change, not one applied after it.
func TestOptimistic_RevertKeepsNewerChange(t *testing.T) {
	c := seeded()
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- c.Optimistic(context.Background(), Remove[item]("42", func(context.Context) error {
			<-release
			return errBoom
		}))
	}()

	require.Eventually(t, func() bool { return c.Len() == 2 }, time.Second, time.Millisecond)
	require.NoError(t, c.Optimistic(context.Background(), Update[item]("7",
		func(it item) item { it.Status = "PENDING"; return it },
		func(context.Context, item, bool) error { return nil })))

	close(release)
	assert.ErrorIs(t, <-done, errBoom)
	assert.Equal(t, []item{{"1", "PENDING"}, {"42", "PENDING"}, {"7", "PENDING"}}, c.Items())
}

func TestLoad_Supersede(t *testing.T) {
	c := &Collection[item]{}
	started := make(chan struct{})
	first := make(chan error, 1)

	go func() {
		first <- c.Load(context.Background(), func(ctx context.Context) ([]item, error) {
			close(started)
			<-ctx.Done()
			return []item{{"stale", "PENDING"}}, ctx.Err()
		}, nil)
	}()
	<-started

	committed := false
	err := c.Load(context.Background(), func(context.Context) ([]item, error) {
		return []item{{"fresh", "PENDING"}}, nil
	}, func() { committed = true })
	require.NoError(t, err)
	assert.True(t, committed)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, []item{{"fresh", "PENDING"}}, c.Items())
	assert.False(t, c.Loading())
}

func TestFetch_StaleDoneKeepsLoading(t *testing.T) {
	c := &Collection[item]{}
	old := c.BeginFetch(context.Background())
	cur := c.BeginFetch(context.Background())

	assert.Error(t, old.Context().Err())
	assert.False(t, old.Commit([]item{{"x", ""}}, nil))
	old.Done()
	assert.True(t, c.Loading())

	assert.True(t, cur.Commit([]item{{"y", ""}}, nil))
	cur.Done()
	assert.False(t, c.Loading())
	assert.Equal(t, []item{{"y", ""}}, c.Items())
}

func TestLoad_Error(t *testing.T) {
	c := seeded()
	err := c.Load(context.Background(), func(context.Context) ([]item, error) { return nil, errBoom }, nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, c.Len())
}
