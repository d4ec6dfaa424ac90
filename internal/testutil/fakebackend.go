// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Route names accepted by Fail, Drop, Hold and Calls.
const (
	RouteToken        = "token"
	RouteRefresh      = "token.refresh"
	RouteRegister     = "register"
	RouteMeGet        = "me.get"
	RouteMePut        = "me.put"
	RoutePassword     = "me.password"
	RouteResetRequest = "reset.request"
	RouteResetConfirm = "reset.confirm"
	RouteTasksList    = "tasks.list"
	RouteTasksCreate  = "tasks.create"
	RouteTasksGet     = "tasks.get"
	RouteTasksUpdate  = "tasks.update"
	RouteTasksPatch   = "tasks.patch"
	RouteTasksDelete  = "tasks.delete"
	RouteNotesList    = "notifications.list"
	RouteNotesRead    = "notifications.read"
	RouteNotesDelete  = "notifications.delete"
	RouteDashboard    = "dashboard"
	RouteAISuggestion = "ai"
)

const (
	fakeSigningSecret   = "fake-backend-secret"
	invalidTokenMessage = "Given token not valid for any token type"
)

// FakeTask is a task as the fake backend stores it.
type FakeTask struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	Category    *string `json:"category"`
	CreatedAt   string  `json:"created_at"`
}

// FakeNotification is a notification as the fake backend stores it.
type FakeNotification struct {
	ID        int     `json:"id"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at"`
}

type fakeUser struct {
	password string
	email    string
}

type fault struct {
	status int
	times  int
}

// FakeBackend is an in-memory REST backend served by httptest.
// Routes live under /api/; URL returns the base URL clients should use.
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.Mutex
	users         map[string]fakeUser
	tasks         []FakeTask
	notifications []FakeNotification
	nextID        int
	access        map[string]string // token -> username
	refresh       map[string]string // token -> username
	minted        int
	calls         map[string]int
	auth          map[string][]string
	faults        map[string]*fault
	drops         map[string]int
	holds         map[string]chan struct{}

	// PageSize > 0 paginates task lists as {count, next, previous, results}.
	PageSize int
	// BareLists serves list endpoints as bare JSON arrays.
	BareLists bool
	// RefreshGate, when set, blocks the refresh endpoint until it is closed.
	RefreshGate chan struct{}
	// Metrics is served by the dashboard endpoint.
	Metrics map[string]any
	// Suggestion is served by the AI suggestion endpoint.
	Suggestion any
}

// NewFakeBackend starts a fake backend with one user alice/pw123.
// The server is closed when the test ends.
func NewFakeBackend(t interface{ Cleanup(func()) }) *FakeBackend {
	f := &FakeBackend{
		users:   map[string]fakeUser{"alice": {password: "pw123", email: "alice@example.com"}},
		nextID:  1,
		access:  make(map[string]string),
		refresh: make(map[string]string),
		calls:   make(map[string]int),
		auth:    make(map[string][]string),
		faults:  make(map[string]*fault),
		drops:   make(map[string]int),
		holds:   make(map[string]chan struct{}),
		Metrics: map[string]any{
			"workHours":       map[string]int{"hours": 1, "minutes": 30},
			"workHoursTrend":  "increase",
			"percentOfTarget": 19,
			"focusPercent":    40,
			"dailySummary":    map[string]any{"labels": []string{"Focus", "Work"}, "data": []int{36, 54}},
			"productiveApps":  []map[string]any{{"name": "Editor", "minutes": 60}},
			"aiInsights":      []map[string]string{{"icon": "TrendingUp", "text": "You're building momentum! Keep up the great work."}},
			"tasksDueToday":   2,
		},
		Suggestion: map[string]string{"suggestion": "Review your top three tasks.", "message": "Based on your recent activity."},
	}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL, ending in "/api/".
func (f *FakeBackend) URL() string {
	return f.Server.URL + "/api/"
}

func (f *FakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(f.instrument)

	public := func(path, method, name string, h http.HandlerFunc) {
		api.HandleFunc(path, h).Methods(method).Name(name)
	}
	protected := func(path, method, name string, h func(http.ResponseWriter, *http.Request, string)) {
		api.HandleFunc(path, f.requireAuth(h)).Methods(method).Name(name)
	}

	public("/token/", http.MethodPost, RouteToken, f.handleToken)
	public("/token/refresh/", http.MethodPost, RouteRefresh, f.handleRefresh)
	public("/register/", http.MethodPost, RouteRegister, f.handleRegister)
	public("/password-reset/request/", http.MethodPost, RouteResetRequest, f.handleResetRequest)
	public("/password-reset/confirm/", http.MethodPost, RouteResetConfirm, f.handleResetConfirm)
	public("/ai-suggestion/", http.MethodGet, RouteAISuggestion, f.handleSuggestion)

	protected("/users/me/", http.MethodGet, RouteMeGet, f.handleMeGet)
	protected("/users/me/", http.MethodPut, RouteMePut, f.handleMePut)
	protected("/users/me/change-password/", http.MethodPut, RoutePassword, f.handlePassword)
	protected("/tasks/", http.MethodGet, RouteTasksList, f.handleTasksList)
	protected("/tasks/", http.MethodPost, RouteTasksCreate, f.handleTasksCreate)
	protected("/tasks/{id}/", http.MethodGet, RouteTasksGet, f.handleTaskGet)
	protected("/tasks/{id}/", http.MethodPut, RouteTasksUpdate, f.handleTaskUpdate)
	protected("/tasks/{id}/", http.MethodPatch, RouteTasksPatch, f.handleTaskUpdate)
	protected("/tasks/{id}/", http.MethodDelete, RouteTasksDelete, f.handleTaskDelete)
	protected("/notifications/", http.MethodGet, RouteNotesList, f.handleNotesList)
	protected("/notifications/{id}/mark_read/", http.MethodPut, RouteNotesRead, f.handleNoteRead)
	protected("/notifications/{id}/", http.MethodDelete, RouteNotesDelete, f.handleNoteDelete)
	protected("/dashboard-metrics/", http.MethodGet, RouteDashboard, f.handleDashboard)

	return r
}

// instrument counts calls and applies injected drops, holds and failures.
func (f *FakeBackend) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		f.mu.Lock()
		f.calls[name]++
		f.auth[name] = append(f.auth[name], r.Header.Get("Authorization"))
		drop := f.drops[name] > 0
		if drop {
			f.drops[name]--
		}
		hold := f.holds[name]
		var injected int
		if ft := f.faults[name]; ft != nil && ft.times != 0 {
			injected = ft.status
			if ft.times > 0 {
				ft.times--
			}
		}
		f.mu.Unlock()

		if drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
		}

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if injected != 0 {
			writeJSON(w, injected, map[string]string{"detail": fmt.Sprintf("injected %d", injected)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) requireAuth(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		f.mu.Lock()
		user, ok := f.access[token]
		f.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": invalidTokenMessage, "code": "token_not_valid"})
			return
		}
		h(w, r, user)
	}
}

// Fail makes the next times calls to route answer with status.
// times < 0 fails every call until Fail is called again with times 0.
func (f *FakeBackend) Fail(route string, status, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[route] = &fault{status: status, times: times}
}

// Drop closes the connection of the next n calls to route without a response.
func (f *FakeBackend) Drop(route string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drops[route] = n
}

// Hold blocks calls to route until the returned release func is called.
func (f *FakeBackend) Hold(route string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holds[route] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.holds[route] == ch {
				delete(f.holds, route)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many requests route received.
func (f *FakeBackend) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// TotalCalls returns the number of requests across all routes.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// AuthHeaders returns the Authorization header of every request to route, in order.
func (f *FakeBackend) AuthHeaders(route string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth[route]...)
}

// ExpireAccessTokens invalidates every issued access token.
func (f *FakeBackend) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]string)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (f *FakeBackend) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = make(map[string]string)
}

// IssueTokens mints a valid access/refresh pair for username.
func (f *FakeBackend) IssueTokens(username string) (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	access = f.mintLocked(username, "access", 5*time.Minute)
	refresh = f.mintLocked(username, "refresh", 24*time.Hour)
	f.access[access] = username
	f.refresh[refresh] = username
	return access, refresh
}

// AddTask stores a task and returns its id.
func (f *FakeBackend) AddTask(title, status string, priority int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.tasks = append(f.tasks, FakeTask{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: time.Date(2026, 1, 1, 9, 0, id, 0, time.UTC).Format(time.RFC3339),
	})
	return id
}

// SetNextID sets the id given to the next stored task or notification.
func (f *FakeBackend) SetNextID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = id
}

// SetTaskDue sets the due date (YYYY-MM-DD) of task id.
func (f *FakeBackend) SetTaskDue(id int, due string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].DueDate = &due
		}
	}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []FakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeTask(nil), f.tasks...)
}

// AddNotification stores a notification and returns its id.
func (f *FakeBackend) AddNotification(message string, read bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.notifications = append(f.notifications, FakeNotification{
		ID:        id,
		Message:   message,
		IsRead:    read,
		CreatedAt: time.Date(2026, 1, 2, 9, 0, id, 0, time.UTC).Format(time.RFC3339),
	})
	return id
}

// Notifications returns a copy of the stored notifications.
func (f *FakeBackend) Notifications() []FakeNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeNotification(nil), f.notifications...)
}

// Password returns the stored password of username.
func (f *FakeBackend) Password(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[username].password
}

func (f *FakeBackend) mintLocked(username, kind string, ttl time.Duration) string {
	f.minted++
	claims := jwt.MapClaims{
		"sub":        username,
		"token_type": kind,
		"jti":        strconv.Itoa(f.minted),
		"exp":        time.Now().Add(ttl).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(fakeSigningSecret))
	if err != nil {
		panic(err)
	}
	return s
}

func (f *FakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	f.mu.Lock()
	u, ok := f.users[in.Username]
	f.mu.Unlock()
	if !ok || u.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	access, refresh := f.IssueTokens(in.Username)
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (f *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if gate := f.RefreshGate; gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.refresh[in.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	access := f.mintLocked(user, "access", 5*time.Minute)
	f.access[access] = user
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	errs := map[string][]string{}
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Username == "" {
		errs["username"] = []string{"This field may not be blank."}
	} else if _, taken := f.users[in.Username]; taken {
		errs["username"] = []string{"A user with that username already exists."}
	}
	if len(in.Password) < 5 {
		errs["password"] = []string{"This password is too short."}
	}
	if in.Password != in.Password2 {
		errs["password2"] = []string{"Password fields didn't match."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	f.users[in.Username] = fakeUser{password: in.Password, email: in.Email}
	writeJSON(w, http.StatusCreated, map[string]string{"username": in.Username, "email": in.Email})
}

func (f *FakeBackend) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "If an account with that email exists, a password reset link has been sent."})
}

func (f *FakeBackend) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UID         string `json:"uid"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[in.UID]
	if !ok || in.Token != "reset-"+in.UID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "The reset link is invalid or has expired."})
		return
	}
	u.password = in.NewPassword
	f.users[in.UID] = u
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully."})
}

func (f *FakeBackend) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.Suggestion)
}

func (f *FakeBackend) handleMeGet(w http.ResponseWriter, r *http.Request, user string) {
	f.mu.Lock()
	u := f.users[user]
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"username": user, "email": u.email})
}

func (f *FakeBackend) handleMePut(w http.ResponseWriter, r *http.Request, user string) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !strings.Contains(in.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"Enter a valid email address."}})
		return
	}

	f.mu.Lock()
	u := f.users[user]
	u.email = in.Email
	f.users[user] = u
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"username": user, "email": in.Email})
}

func (f *FakeBackend) handlePassword(w http.ResponseWriter, r *http.Request, user string) {
	var in struct {
		Old     string `json:"old_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[user]
	if u.password != in.Old {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
		return
	}
	if in.New != in.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password": {"New passwords must match."}})
		return
	}
	u.password = in.New
	f.users[user] = u
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Password updated successfully."})
}

func (f *FakeBackend) handleTasksList(w http.ResponseWriter, r *http.Request, _ string) {
	q := r.URL.Query()

	f.mu.Lock()
	var out []FakeTask
	for _, t := range f.tasks {
		if s := q.Get("search"); s != "" &&
			!strings.Contains(strings.ToLower(t.Title), strings.ToLower(s)) &&
			!strings.Contains(strings.ToLower(t.Description), strings.ToLower(s)) {
			continue
		}
		if s := q.Get("status"); s != "" && !strings.EqualFold(t.Status, s) {
			continue
		}
		if p := q.Get("priority"); p != "" && strconv.Itoa(t.Priority) != p {
			continue
		}
		if start := q.Get("start_date"); start != "" && (t.DueDate == nil || *t.DueDate < start) {
			continue
		}
		if end := q.Get("end_date"); end != "" && (t.DueDate == nil || *t.DueDate > end) {
			continue
		}
		out = append(out, t)
	}
	f.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	f.writeList(w, r, out, f.PageSize)
}

func (f *FakeBackend) handleTasksCreate(w http.ResponseWriter, r *http.Request, _ string) {
	var in FakeTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field may not be blank."}})
		return
	}

	f.mu.Lock()
	in.ID = f.nextID
	f.nextID++
	if in.Status == "" {
		in.Status = "PENDING"
	}
	if in.Priority == 0 {
		in.Priority = 2
	}
	in.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	f.tasks = append(f.tasks, in)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, in)
}

func (f *FakeBackend) taskIndexLocked(r *http.Request) int {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return -1
	}
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeBackend) handleTaskGet(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(r)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *FakeBackend) handleTaskUpdate(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(r)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	updated := f.tasks[i]
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	updated.ID = f.tasks[i].ID
	updated.CreatedAt = f.tasks[i].CreatedAt
	if updated.Status != "PENDING" && updated.Status != "DONE" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"status": {fmt.Sprintf("%q is not a valid choice.", updated.Status)}})
		return
	}
	f.tasks[i] = updated
	writeJSON(w, http.StatusOK, updated)
}

func (f *FakeBackend) handleTaskDelete(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(r)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) handleNotesList(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	out := append([]FakeNotification(nil), f.notifications...)
	f.mu.Unlock()

	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	f.writeList(w, r, out, 0)
}

func (f *FakeBackend) noteIndexLocked(r *http.Request) int {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return -1
	}
	for i, n := range f.notifications {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeBackend) handleNoteRead(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.noteIndexLocked(r)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if !f.notifications[i].IsRead {
		now := time.Now().UTC().Format(time.RFC3339)
		f.notifications[i].IsRead = true
		f.notifications[i].ReadAt = &now
	}
	writeJSON(w, http.StatusOK, f.notifications[i])
}

func (f *FakeBackend) handleNoteDelete(w http.ResponseWriter, r *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.noteIndexLocked(r)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) handleDashboard(w http.ResponseWriter, r *http.Request, _ string) {
	writeJSON(w, http.StatusOK, f.Metrics)
}

func writePage[T any](f *FakeBackend, w http.ResponseWriter, r *http.Request, items []T, pageSize int) {
	if items == nil {
		items = []T{}
	}
	if f.BareLists {
		writeJSON(w, http.StatusOK, items)
		return
	}

	count := len(items)
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	var next, prev *string
	if pageSize > 0 {
		start := (page - 1) * pageSize
		if start > count {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
			return
		}
		end := start + pageSize
		if end > count {
			end = count
		}
		if end < count {
			s := pageURL(r, page+1)
			next = &s
		}
		if page > 1 {
			s := pageURL(r, page-1)
			prev = &s
		}
		items = items[start:end]
	}

	body := map[string]any{
		"count":    count,
		"next":     next,
		"previous": prev,
		"results":  items,
	}
	if pageSize > 0 {
		body["total_pages"] = max((count+pageSize-1)/pageSize, 1)
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeBackend) writeList(w http.ResponseWriter, r *http.Request, items any, pageSize int) {
	switch v := items.(type) {
	case []FakeTask:
		writePage(f, w, r, v, pageSize)
	case []FakeNotification:
		writePage(f, w, r, v, pageSize)
	}
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return "http://" + r.Host + r.URL.Path + "?" + q.Encode()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
