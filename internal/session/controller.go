// Package session owns the authentication state: initial resolution from the
// stored session, login, registration, guest mode, and logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
	"prodexa/internal/tokenstore"
)

// State is the session mode.
type State int

const (
	Unresolved State = iota
	Guest
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Guest:
		return "guest"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unresolved"
	}
}

// GuestName is the display name of the guest session.
const GuestName = "Guest"

var (
	// ErrPasswordMismatch is returned when a password and its confirmation differ.
	ErrPasswordMismatch = errors.New("Passwords do not match.")

	// ErrNotLoggedIn is returned by profile reads without a session.
	ErrNotLoggedIn = errors.New("Please log in to view your profile.")
)

// Doer sends API requests. *apiclient.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error)
}

// Profile is the logged-in user's account data.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterInput holds the registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// Controller is the session state machine.
// The state leaves Unresolved once, on Init or any login/logout operation,
// and never returns to it.
type Controller struct {
	api    Doer
	tokens *tokenstore.Store
	notify Notifier
	log    *slog.Logger

	unsubscribe func()

	mu       sync.RWMutex
	state    State
	resolved bool
	username string
	email    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates a Controller and subscribes it to forced logouts on bus.
func NewController(api Doer, tokens *tokenstore.Store, bus *Bus, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		tokens: tokens,
		notify: discardNotifier{},
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if bus != nil {
		c.unsubscribe = bus.Subscribe(c.onLogoutEvent)
	}
	return c
}

// Close detaches the controller from the logout bus.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Init resolves the stored session. A guest flag resolves without a network
// call. A stored token is verified with one profile request: a 401 logs out
// silently, any other failure keeps the session provisionally authenticated.
func (c *Controller) Init(ctx context.Context) {
	snap := c.tokens.Read()

	switch {
	case snap.IsGuest:
		c.set(Guest, GuestName, "")
	case snap.AccessToken == "":
		c.set(Anonymous, "", "")
	default:
		// a session saved before its profile loaded still knows the user from the token
		username := snap.Username
		if username == "" {
			username = tokenstore.Subject(snap.AccessToken)
		}
		c.set(Authenticated, username, snap.Email)
		if _, err := c.fetchProfile(ctx); err != nil {
			if errors.Is(err, apiclient.ErrUnauthorized) {
				c.log.Info("stored session rejected", "error", err)
				c.silentLogout()
			} else {
				c.log.Warn("session check failed, keeping session", "error", err)
			}
		}
	}

	c.mu.Lock()
	c.resolved = true
	c.mu.Unlock()
}

// Login exchanges credentials for tokens and loads the profile.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	resp, err := c.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   "token/",
		Body:   map[string]string{"username": username, "password": password},
		NoAuth: true,
	})

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		Email   string `json:"email"`
	}
	if err == nil {
		err = resp.Decode(&out)
	}
	if err == nil && out.Access == "" {
		err = errors.New("token response without access token")
	}
	if err != nil {
		msg := "Login failed. Invalid credentials or network error."
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			msg = "Login failed: " + apiErr.Detail
		}
		c.notify.Notify(Notice{Level: LevelError, Title: "Login Failed.", Message: msg})
		c.mu.Lock()
		if c.state == Unresolved {
			c.state = Anonymous
		}
		c.resolved = true
		c.mu.Unlock()
		return &FailureError{Message: msg, Err: err}
	}

	_ = c.tokens.SetTokens(out.Access, out.Refresh)
	_ = c.tokens.SetProfile(username, out.Email)
	c.set(Authenticated, username, out.Email)
	c.markResolved()

	if _, err := c.fetchProfile(ctx); err != nil {
		c.log.Warn("profile fetch after login failed", "error", err)
	}

	c.notify.Notify(Notice{Level: LevelSuccess, Title: "Login Successful.", Message: "Welcome back!"})
	return nil
}

// Register creates an account. It never logs in; the user logs in afterwards.
func (c *Controller) Register(ctx context.Context, in RegisterInput) error {
	if in.Password != in.Confirm {
		c.notify.Notify(Notice{Level: LevelError, Title: "Registration Failed.", Message: ErrPasswordMismatch.Error()})
		return ErrPasswordMismatch
	}

	_, err := c.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   "register/",
		Body: map[string]string{
			"username":  in.Username,
			"email":     in.Email,
			"password":  in.Password,
			"password2": in.Confirm,
		},
		NoAuth: true,
	})
	if err != nil {
		msg := registrationMessage(err)
		c.notify.Notify(Notice{Level: LevelError, Title: "Registration Failed.", Message: msg})
		return &FailureError{Message: msg, Err: err}
	}

	c.notify.Notify(Notice{Level: LevelSuccess, Title: "Registration Successful.", Message: "You can now log in with your credentials."})
	return nil
}

// registrationMessage joins every message of the error body, ordered by field.
func registrationMessage(err error) string {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || (apiErr.Detail == "" && len(apiErr.Fields) == 0) {
		return "Registration failed. Please try again."
	}

	var parts []string
	if apiErr.Detail != "" {
		parts = append(parts, apiErr.Detail)
	}
	keys := make([]string, 0, len(apiErr.Fields))
	for k := range apiErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, apiErr.Fields[k]...)
	}
	return strings.Join(parts, " ")
}

// GuestLogin drops any real session and enters guest mode. No network call is made.
func (c *Controller) GuestLogin() {
	_ = c.tokens.SetGuest()
	c.set(Guest, GuestName, "")
	c.markResolved()
	c.notify.Notify(Notice{Level: LevelInfo, Title: "Guest Mode.", Message: "You are in guest mode. Some features are limited."})
}

// Logout clears the session. showNotice controls the confirmation notice.
func (c *Controller) Logout(showNotice bool) {
	_ = c.tokens.ClearTokens()
	c.set(Anonymous, "", "")
	c.markResolved()
	if showNotice {
		c.notify.Notify(Notice{Level: LevelSuccess, Title: "Logged Out.", Message: "You have been successfully logged out."})
	}
}

func (c *Controller) onLogoutEvent(ev LogoutEvent) {
	if c.State() == Anonymous {
		return
	}
	c.log.Debug("logout signal received", "silent", ev.Silent)
	c.Logout(!ev.Silent)
}

// silentLogout logs out without a notice unless the session is already gone.
func (c *Controller) silentLogout() {
	if c.State() == Anonymous {
		return
	}
	c.Logout(false)
}

// State returns the current session mode.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsResolved reports whether the initial session check has completed.
func (c *Controller) IsResolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolved
}

// IsGuest reports whether the session is in guest mode.
func (c *Controller) IsGuest() bool { return c.State() == Guest }

// IsAuthenticated reports whether the session holds a real login.
func (c *Controller) IsAuthenticated() bool { return c.State() == Authenticated }

// Username returns the display name of the session user.
func (c *Controller) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Email returns the cached email of the session user.
func (c *Controller) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// FetchProfile loads the profile. Guests get a fixed profile without a network call.
func (c *Controller) FetchProfile(ctx context.Context) (Profile, error) {
	switch c.State() {
	case Guest:
		return Profile{Username: GuestName}, nil
	case Authenticated:
	default:
		return Profile{}, ErrNotLoggedIn
	}

	p, err := c.fetchProfile(ctx)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, apiclient.ErrUnauthorized) {
		c.silentLogout()
		return Profile{}, &FailureError{Message: "Session expired. Please log in again.", Err: err}
	}
	return Profile{}, &FailureError{Message: "Failed to load profile. Please try again.", Err: err}
}

func (c *Controller) fetchProfile(ctx context.Context) (Profile, error) {
	resp, err := c.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: "users/me/"})
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := resp.Decode(&p); err != nil {
		return Profile{}, err
	}
	c.storeProfile(p)
	return p, nil
}

func (c *Controller) storeProfile(p Profile) {
	c.mu.Lock()
	if c.state == Authenticated {
		c.username = p.Username
		c.email = p.Email
	}
	c.mu.Unlock()
	_ = c.tokens.SetProfile(p.Username, p.Email)
}

// UpdateProfile changes the account email.
func (c *Controller) UpdateProfile(ctx context.Context, email string) (Profile, error) {
	if err := resource.Guard(c, "update profile"); err != nil {
		return Profile{}, err
	}

	resp, err := c.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPut,
		Path:   "users/me/",
		Body:   map[string]string{"username": c.Username(), "email": email},
	})
	var p Profile
	if err == nil {
		err = resp.Decode(&p)
	}
	if err != nil {
		msg := fieldMessage(err, "Failed to update profile. Please try again.",
			[2]string{"username", "Username error"}, [2]string{"email", "Email error"})
		if errors.Is(err, apiclient.ErrUnauthorized) {
			c.silentLogout()
			msg = "Session expired. Please log in again."
		}
		c.notify.Notify(Notice{Level: LevelError, Title: "Update Failed.", Message: msg})
		return Profile{}, &FailureError{Message: msg, Err: err}
	}

	c.storeProfile(p)
	c.notify.Notify(Notice{Level: LevelSuccess, Title: "Profile Updated.", Message: "Profile updated successfully!"})
	return p, nil
}

// ChangePassword replaces the account password after a local confirmation check.
func (c *Controller) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	if err := resource.Guard(c, "change password"); err != nil {
		return err
	}
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return &FailureError{Message: "All password fields are required."}
	}
	if newPassword != confirm {
		c.notify.Notify(Notice{Level: LevelError, Title: "Password Change Failed.", Message: ErrPasswordMismatch.Error()})
		return ErrPasswordMismatch
	}

	_, err := c.api.Do(ctx, &apiclient.Request{
		Method: http.MethodPut,
		Path:   "users/me/change-password/",
		Body: map[string]string{
			"old_password":     oldPassword,
			"new_password":     newPassword,
			"confirm_password": confirm,
		},
	})
	if err != nil {
		msg := fieldMessage(err, "Failed to change password. Please try again.",
			[2]string{"old_password", "Old password error"}, [2]string{"new_password", "New password error"})
		c.notify.Notify(Notice{Level: LevelError, Title: "Password Change Failed.", Message: msg})
		return &FailureError{Message: msg, Err: err}
	}

	c.notify.Notify(Notice{Level: LevelSuccess, Title: "Password Changed.", Message: "Password changed successfully!"})
	return nil
}

// fieldMessage prefers the first listed field's errors, then the detail, then fallback.
func fieldMessage(err error, fallback string, fields ...[2]string) string {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return apiclient.Message(err, fallback)
	}
	for _, f := range fields {
		if msgs := apiErr.Fields[f[0]]; len(msgs) > 0 {
			return fmt.Sprintf("%s: %s", f[1], strings.Join(msgs, ", "))
		}
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// RequestPasswordReset asks the backend to mail a reset link and returns its message.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.resetCall(ctx, "password-reset/request/",
		map[string]string{"email": email},
		"Error sending password reset email. Please try again later.")
}

// ConfirmPasswordReset sets a new password from a reset link's uid and token.
func (c *Controller) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) (string, error) {
	return c.resetCall(ctx, "password-reset/confirm/",
		map[string]string{"uid": uid, "token": token, "new_password": newPassword},
		"The reset link is invalid or has expired.")
}

func (c *Controller) resetCall(ctx context.Context, path string, body map[string]string, fallback string) (string, error) {
	resp, err := c.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: path, Body: body, NoAuth: true})

	var out struct {
		Message string `json:"message"`
	}
	if err == nil {
		err = resp.Decode(&out)
	}
	if err != nil {
		msg := fallback
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			if m := apiErr.Fields["message"]; len(m) > 0 {
				msg = strings.Join(m, " ")
			} else if m := apiErr.Fields["new_password"]; len(m) > 0 {
				msg = strings.Join(m, " ")
			}
		}
		c.notify.Notify(Notice{Level: LevelError, Title: "Password Reset Failed.", Message: msg})
		return "", &FailureError{Message: msg, Err: err}
	}
	return out.Message, nil
}

func (c *Controller) set(s State, username, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.username = username
	c.email = email
}

func (c *Controller) markResolved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = true
}
