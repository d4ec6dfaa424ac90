// Package service wires the session, its resources and the backend client
// into the single value commands operate on.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"prodexa/internal/apiclient"
	"prodexa/internal/backend/googletasks"
	"prodexa/internal/config"
	"prodexa/internal/focus"
	"prodexa/internal/insights"
	"prodexa/internal/logging"
	"prodexa/internal/notifications"
	"prodexa/internal/session"
	"prodexa/internal/tasks"
	"prodexa/internal/tokenstore"
)

// Service holds everything a command needs for one run.
// Commands never build clients or stores themselves.
type Service struct {
	Config        *config.Config
	Log           *slog.Logger
	Tokens        *tokenstore.Store
	API           *apiclient.Client
	Bus           *session.Bus
	Session       *session.Controller
	Tasks         *tasks.Tasks
	Notifications *notifications.Notifications
	Dashboard     *insights.Dashboard
	Tips          *insights.Tips

	google  func(ctx context.Context) (*googletasks.Client, error)
	closers []func() error
}

type options struct {
	storage    tokenstore.Storage
	httpClient *http.Client
	notifier   session.Notifier
	logOut     io.Writer
	google     func(ctx context.Context) (*googletasks.Client, error)
}

// Option configures New.
type Option func(*options)

// WithStorage replaces the storage selected by the configured backend.
func WithStorage(s tokenstore.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithHTTPClient sets the HTTP client of the API client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithNotifier sets where session and resource notices go.
func WithNotifier(n session.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithLogOutput sets where logs are written. Logging is discarded without it.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithGoogle replaces how the Google Tasks client is built.
func WithGoogle(fn func(ctx context.Context) (*googletasks.Client, error)) Option {
	return func(o *options) { o.google = fn }
}

// New builds a Service for cfg. The session is not resolved yet; call
// Session.Init or one of the login operations.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := logging.Discard()
	if o.logOut != nil {
		log = logging.New(o.logOut, cfg.Settings.Log, cfg.Debug)
	}

	s := &Service{Config: cfg, Log: log, google: o.google}

	storage := o.storage
	if storage == nil {
		var err error
		storage, err = s.openStorage(ctx)
		if err != nil {
			return nil, err
		}
	}
	s.Tokens = tokenstore.New(storage, log.With("component", "tokenstore"))
	s.Bus = session.NewBus()

	apiOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.Settings.API.Timeout),
		apiclient.WithLogger(log.With("component", "apiclient")),
		apiclient.WithLogoutPublisher(s.Bus),
	}
	if o.httpClient != nil {
		apiOpts = append([]apiclient.Option{apiclient.WithHTTPClient(o.httpClient)}, apiOpts...)
	}
	api, err := apiclient.New(cfg.Settings.API.BaseURL, s.Tokens, apiOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.API = api

	notifier := o.notifier
	if notifier == nil {
		notifier = session.NotifierFunc(func(session.Notice) {})
	}

	s.Session = session.NewController(api, s.Tokens, s.Bus,
		session.WithNotifier(notifier),
		session.WithLogger(log.With("component", "session")))
	s.closers = append(s.closers, func() error { s.Session.Close(); return nil })

	s.Tasks = tasks.New(api, s.Session,
		tasks.WithNotifier(notifier),
		tasks.WithLogger(log.With("component", "tasks")))
	s.Notifications = notifications.New(api, s.Session,
		notifications.WithNotifier(notifier),
		notifications.WithLogger(log.With("component", "notifications")))
	s.Dashboard = insights.NewDashboard(api, s.Session, log.With("component", "dashboard"))
	s.closers = append(s.closers, func() error { s.Dashboard.Close(); return nil })
	s.Tips = insights.NewTips(api, s.Session,
		insights.WithDemo(cfg.Settings.AI.Demo),
		insights.WithTipsLogger(log.With("component", "tips")))

	return s, nil
}

func (s *Service) openStorage(ctx context.Context) (tokenstore.Storage, error) {
	switch s.Config.Settings.Storage.Backend {
	case config.StorageMemory:
		return tokenstore.NewMemoryStorage(), nil
	case config.StorageSQLite:
		db, err := tokenstore.OpenSQLite(ctx, s.Config.SessionPath())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	default:
		return tokenstore.NewFileStorage(s.Config.SessionPath()), nil
	}
}

// NewTimer creates a focus timer with the configured durations.
func (s *Service) NewTimer(onTick func(focus.State), opts ...focus.Option) *focus.Timer {
	f := s.Config.Settings.Focus
	t := focus.New(f.Work, f.Break, onTick, opts...)
	s.closers = append(s.closers, func() error { t.Close(); return nil })
	return t
}

// Google returns a Google Tasks client from the stored Google token.
func (s *Service) Google(ctx context.Context) (*googletasks.Client, error) {
	if s.google != nil {
		return s.google(ctx)
	}
	return googletasks.New(ctx, s.Config)
}

// Close releases the resources of the service in reverse order of creation.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close service: %w", err)
	}
	return nil
}
