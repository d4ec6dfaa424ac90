// Package notifications is the server-backed notification list of the session.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
	"prodexa/internal/session"
)

// Notification is a notification as the backend returns it.
type Notification struct {
	ID        resource.ID `json:"id"`
	Message   string      `json:"message"`
	IsRead    bool        `json:"is_read"`
	CreatedAt string      `json:"created_at,omitempty"`
	ReadAt    string      `json:"read_at,omitempty"`
}

func (n Notification) EntityID() resource.ID { return n.ID }

// Notifications holds the loaded notifications.
type Notifications struct {
	api    *apiclient.Client
	auth   resource.AuthState
	notify session.Notifier
	log    *slog.Logger

	coll resource.Collection[Notification]
}

// Option configures Notifications.
type Option func(*Notifications)

// WithNotifier sets where notices go.
func WithNotifier(n session.Notifier) Option {
	return func(s *Notifications) { s.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Notifications) { s.log = l }
}

// New creates the notification list.
func New(api *apiclient.Client, auth resource.AuthState, opts ...Option) *Notifications {
	s := &Notifications{
		api:    api,
		auth:   auth,
		notify: session.NotifierFunc(func(session.Notice) {}),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns the loaded notifications, newest first as the backend orders them.
func (s *Notifications) Items() []Notification {
	return s.coll.Items()
}

// Loading reports whether a fetch is in flight.
func (s *Notifications) Loading() bool {
	return s.coll.Loading()
}

// UnreadCount returns the number of loaded unread notifications.
func (s *Notifications) UnreadCount() int {
	n := 0
	for _, item := range s.coll.Items() {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// Fetch loads the notifications. Guests get an empty list without a network
// call; anonymous sessions get ErrLoginRequired.
func (s *Notifications) Fetch(ctx context.Context) error {
	if s.auth.IsGuest() {
		s.coll.Replace(nil)
		return nil
	}
	if err := resource.Guard(s.auth, "fetch notifications"); err != nil {
		s.coll.Replace(nil)
		return err
	}

	err := s.coll.Load(ctx, func(ctx context.Context) ([]Notification, error) {
		page, err := apiclient.GetList[Notification](ctx, s.api, "notifications/", nil)
		return page.Items, err
	}, nil)
	if err == nil || errors.Is(err, resource.ErrSuperseded) {
		return err
	}
	s.fail("Failed to load notifications.", err)
	return fmt.Errorf("fetch notifications: %w", err)
}

// MarkRead marks notification id as read.
func (s *Notifications) MarkRead(ctx context.Context, id resource.ID) error {
	if err := s.guard("mark notification read", "Please log in to manage notifications."); err != nil {
		return err
	}

	read := func(n Notification) Notification {
		n.IsRead = true
		return n
	}
	err := s.coll.Optimistic(ctx, resource.Update(id, read, func(ctx context.Context, _ Notification, _ bool) error {
		return s.api.Put(ctx, notePath(id)+"mark_read/", nil, nil)
	}))
	if err != nil {
		s.fail("Failed to mark notification as read.", err)
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every loaded unread notification as read, one request at
// a time. It stops at the first failure; that item is rolled back and the
// ones already marked stay read.
func (s *Notifications) MarkAllRead(ctx context.Context) (int, error) {
	if err := s.guard("mark notifications read", "Please log in to manage notifications."); err != nil {
		return 0, err
	}

	marked := 0
	for _, n := range s.coll.Items() {
		if n.IsRead {
			continue
		}
		if err := s.MarkRead(ctx, n.ID); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// Delete removes notification id.
func (s *Notifications) Delete(ctx context.Context, id resource.ID) error {
	if err := s.guard("delete notification", "Please log in to delete notifications."); err != nil {
		return err
	}

	err := s.coll.Optimistic(ctx, resource.Remove[Notification](id, func(ctx context.Context) error {
		return s.api.Delete(ctx, notePath(id))
	}))
	if err != nil {
		s.fail("Failed to delete notification.", err)
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

// guard rejects mutations outside an authenticated session with a notice.
func (s *Notifications) guard(action, hint string) error {
	if err := resource.Guard(s.auth, action); err != nil {
		s.notify.Notify(session.Notice{Level: session.LevelWarning, Title: "Login Required", Message: hint})
		return err
	}
	return nil
}

func (s *Notifications) fail(message string, err error) {
	s.log.Warn("notifications request failed", "error", err)
	s.notify.Notify(session.Notice{Level: session.LevelError, Title: "Notifications", Message: message})
}

func notePath(id resource.ID) string {
	return "notifications/" + url.PathEscape(string(id)) + "/"
}
