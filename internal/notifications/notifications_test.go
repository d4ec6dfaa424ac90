package notifications

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
	"prodexa/internal/session"
	"prodexa/internal/testutil"
	"prodexa/internal/tokenstore"
)

type fakeAuth struct{ guest, authed bool }

func (a fakeAuth) IsGuest() bool         { return a.guest }
func (a fakeAuth) IsAuthenticated() bool { return a.authed }

type noticeLog struct {
	mu    sync.Mutex
	items []session.Notice
}

func (l *noticeLog) Notify(n session.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
}

func (l *noticeLog) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, n := range l.items {
		out = append(out, n.Message)
	}
	return out
}

func setup(t *testing.T, auth fakeAuth) (*testutil.FakeBackend, *noticeLog, *Notifications) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	store := tokenstore.New(tokenstore.NewMemoryStorage(), nil)
	if auth.authed {
		access, refresh := fb.IssueTokens("alice")
		require.NoError(t, store.SetTokens(access, refresh))
	}
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	api, err := apiclient.New(fb.URL(), store, apiclient.WithHTTPClient(hc))
	require.NoError(t, err)

	notes := &noticeLog{}
	return fb, notes, New(api, auth, WithNotifier(notes))
}

func messages(items []Notification) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.Message
	}
	return out
}

func TestFetch(t *testing.T) {
	for _, bare := range []bool{false, true} {
		fb, _, s := setup(t, fakeAuth{authed: true})
		fb.BareLists = bare
		fb.AddNotification("first", true)
		fb.AddNotification("second", false)

		require.NoError(t, s.Fetch(context.Background()))
		assert.Equal(t, []string{"second", "first"}, messages(s.Items()), "bare=%v", bare)
		assert.Equal(t, 1, s.UnreadCount())
	}
}

func TestFetch_GuestEmpty(t *testing.T) {
	fb, _, s := setup(t, fakeAuth{guest: true})

	require.NoError(t, s.Fetch(context.Background()))
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, fb.TotalCalls())
}

func TestFetch_Failure(t *testing.T) {
	fb, notes, s := setup(t, fakeAuth{authed: true})
	fb.Fail(testutil.RouteNotesList, http.StatusInternalServerError, 1)

	assert.ErrorIs(t, s.Fetch(context.Background()), apiclient.ErrServer)
	assert.Equal(t, []string{"Failed to load notifications."}, notes.Messages())
}

func TestMarkRead(t *testing.T) {
	fb, _, s := setup(t, fakeAuth{authed: true})
	id := fb.AddNotification("ping", false)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	require.NoError(t, s.MarkRead(ctx, resource.ID("1")))
	assert.Equal(t, 0, s.UnreadCount())
	assert.True(t, fb.Notifications()[0].IsRead)
	assert.Equal(t, id, fb.Notifications()[0].ID)
}

func TestMarkRead_Rollback(t *testing.T) {
	fb, notes, s := setup(t, fakeAuth{authed: true})
	fb.AddNotification("ping", false)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	fb.Fail(testutil.RouteNotesRead, http.StatusInternalServerError, 1)
	require.Error(t, s.MarkRead(ctx, "1"))
	assert.Equal(t, 1, s.UnreadCount())
	assert.Equal(t, []string{"Failed to mark notification as read."}, notes.Messages())
}

func TestMarkAllRead(t *testing.T) {
	fb, _, s := setup(t, fakeAuth{authed: true})
	fb.AddNotification("a", false)
	fb.AddNotification("b", true)
	fb.AddNotification("c", false)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	marked, err := s.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	assert.Equal(t, 0, s.UnreadCount())
	assert.Equal(t, 2, fb.Calls(testutil.RouteNotesRead))
}

func TestMarkAllRead_PartialFailure(t *testing.T) {
	fb, _, s := setup(t, fakeAuth{authed: true})
	fb.AddNotification("a", false)
	fb.AddNotification("b", false)
	fb.AddNotification("c", false)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	fb.Fail(testutil.RouteNotesRead, http.StatusInternalServerError, -1)
	marked, err := s.MarkAllRead(ctx)

	require.Error(t, err)
	assert.Equal(t, 0, marked)
	assert.Equal(t, 3, s.UnreadCount())
	assert.Equal(t, 1, fb.Calls(testutil.RouteNotesRead))
}

func TestDelete(t *testing.T) {
	fb, notes, s := setup(t, fakeAuth{authed: true})
	fb.AddNotification("a", false)
	fb.AddNotification("b", false)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))
	before := messages(s.Items())

	fb.Fail(testutil.RouteNotesDelete, http.StatusInternalServerError, 1)
	require.Error(t, s.Delete(ctx, "1"))
	assert.Equal(t, before, messages(s.Items()))
	assert.Equal(t, []string{"Failed to delete notification."}, notes.Messages())

	require.NoError(t, s.Delete(ctx, "1"))
	assert.Equal(t, []string{"b"}, messages(s.Items()))
	assert.Len(t, fb.Notifications(), 1)
}

func TestMutations_RequireLogin(t *testing.T) {
	for name, auth := range map[string]fakeAuth{"guest": {guest: true}, "anonymous": {}} {
		t.Run(name, func(t *testing.T) {
			fb, notes, s := setup(t, auth)
			ctx := context.Background()

			assert.ErrorIs(t, s.MarkRead(ctx, "1"), resource.ErrLoginRequired)
			assert.ErrorIs(t, s.Delete(ctx, "1"), resource.ErrLoginRequired)
			_, err := s.MarkAllRead(ctx)
			assert.ErrorIs(t, err, resource.ErrLoginRequired)
			assert.Equal(t, 0, fb.TotalCalls())
			assert.Equal(t, []string{
				"Please log in to manage notifications.",
				"Please log in to delete notifications.",
				"Please log in to manage notifications.",
			}, notes.Messages())
		})
	}
}

func TestFetch_Anonymous(t *testing.T) {
	fb, notes, s := setup(t, fakeAuth{})

	err := s.Fetch(context.Background())

	assert.ErrorIs(t, err, resource.ErrLoginRequired)
	assert.Empty(t, s.Items())
	assert.Empty(t, notes.Messages())
	assert.Equal(t, 0, fb.TotalCalls())
}
