package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
	"prodexa/internal/session"
)

// Tasks is the task list of the current session.
type Tasks struct {
	api    *apiclient.Client
	auth   resource.AuthState
	notify session.Notifier
	log    *slog.Logger
	now    func() time.Time

	coll resource.Collection[Task]

	mu     sync.Mutex // guards filter and page
	filter Filter
	page   Pagination
}

// Option configures Tasks.
type Option func(*Tasks)

// WithNotifier sets where notices go.
func WithNotifier(n session.Notifier) Option {
	return func(t *Tasks) { t.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tasks) { t.log = l }
}

// WithClock sets the time source used for guest sample dates.
func WithClock(now func() time.Time) Option {
	return func(t *Tasks) { t.now = now }
}

// New creates the task list.
func New(api *apiclient.Client, auth resource.AuthState, opts ...Option) *Tasks {
	t := &Tasks{
		api:    api,
		auth:   auth,
		notify: session.NotifierFunc(func(session.Notice) {}),
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
		page:   Pagination{Page: 1, TotalPages: 1},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tasks returns the loaded tasks.
func (t *Tasks) Tasks() []Task {
	return t.coll.Items()
}

// Find returns the loaded task with id.
func (t *Tasks) Find(id resource.ID) (Task, bool) {
	task, _, ok := t.coll.Find(id)
	return task, ok
}

// Loading reports whether a fetch is in flight.
func (t *Tasks) Loading() bool {
	return t.coll.Loading()
}

// Pagination returns the page state of the last committed fetch.
func (t *Tasks) Pagination() Pagination {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// Filter returns the filter of the last committed fetch.
func (t *Tasks) Filter() Filter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter
}

// Fetch loads the tasks matching f. Guests get the fixed sample list without
// a network call. A fetch superseded by a newer one returns resource.ErrSuperseded
// and changes nothing.
func (t *Tasks) Fetch(ctx context.Context, f Filter) error {
	if f.Page < 1 {
		f.Page = 1
	}

	if t.auth.IsGuest() {
		sample := GuestTasks(t.now())
		t.coll.Replace(sample)
		t.setPage(f, Pagination{Page: 1, TotalPages: 1, Count: len(sample)})
		return nil
	}
	if err := resource.Guard(t.auth, "fetch tasks"); err != nil {
		return err
	}

	var page apiclient.Page[Task]
	err := t.coll.Load(ctx, func(ctx context.Context) ([]Task, error) {
		p, err := apiclient.GetList[Task](ctx, t.api, "tasks/", f.query())
		page = p
		return p.Items, err
	}, func() {
		t.setPage(f, Pagination{Page: f.Page, TotalPages: page.TotalPages, Count: page.Count})
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, resource.ErrSuperseded):
		return err
	case errors.Is(err, apiclient.ErrUnauthorized):
		t.notify.Notify(session.Notice{Level: session.LevelError, Title: "Authentication Required",
			Message: "Authentication required to fetch tasks. Please log in."})
	default:
		t.notify.Notify(session.Notice{Level: session.LevelError, Title: "Error fetching tasks",
			Message: apiclient.Message(err, "Failed to fetch tasks.")})
	}
	return fmt.Errorf("fetch tasks: %w", err)
}

func (t *Tasks) setPage(f Filter, p Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = f
	t.page = p
}

func (f Filter) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != 0 {
		q.Set("priority", strconv.Itoa(f.Priority))
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	return q
}

// NextPage fetches the next page with the current filter.
func (t *Tasks) NextPage(ctx context.Context) error {
	f, p := t.Filter(), t.Pagination()
	if !p.HasNext() {
		return nil
	}
	f.Page = p.Page + 1
	return t.Fetch(ctx, f)
}

// PrevPage fetches the previous page with the current filter.
func (t *Tasks) PrevPage(ctx context.Context) error {
	f, p := t.Filter(), t.Pagination()
	if !p.HasPrev() {
		return nil
	}
	f.Page = p.Page - 1
	return t.Fetch(ctx, f)
}

// refetch reloads the current filter and page after a successful mutation.
func (t *Tasks) refetch(ctx context.Context) {
	err := t.Fetch(ctx, t.Filter())
	if err != nil && !errors.Is(err, resource.ErrSuperseded) {
		t.log.Warn("refetch after mutation failed", "error", err)
	}
}

// guard rejects mutations outside an authenticated session with a notice.
func (t *Tasks) guard(action, hint string) error {
	if err := resource.Guard(t.auth, action); err != nil {
		t.notify.Notify(session.Notice{Level: session.LevelWarning, Title: "Login Required", Message: hint})
		return err
	}
	return nil
}

// Create adds a task. A provisional entry is shown until the server answers,
// then the created task takes its place.
func (t *Tasks) Create(ctx context.Context, in Input) (Task, error) {
	if err := t.guard("add task", "Please log in to add tasks."); err != nil {
		return Task{}, err
	}
	body, err := in.payload()
	if err != nil {
		return Task{}, err
	}

	provisional := in.apply(Task{
		ID:          resource.ID("tmp-" + uuid.NewString()),
		Status:      StatusPending,
		Provisional: true,
	})

	var created Task
	err = t.coll.Optimistic(ctx, resource.Insert(provisional, func(ctx context.Context) error {
		return t.api.Post(ctx, "tasks/", body, &created)
	}))
	if err != nil {
		t.fail("Error adding task", err, "Could not add task.")
		return Task{}, fmt.Errorf("add task: %w", err)
	}
	if created.ID != "" {
		t.coll.Swap(provisional.ID, created)
	}

	t.notify.Notify(session.Notice{Level: session.LevelSuccess, Title: "Task Added", Message: "Your task has been successfully added."})
	t.refetch(ctx)
	return created, nil
}

// Update replaces the writable fields of task id.
func (t *Tasks) Update(ctx context.Context, id resource.ID, in Input) (Task, error) {
	if err := t.guard("edit task", "Please log in to edit tasks."); err != nil {
		return Task{}, err
	}
	body, err := in.payload()
	if err != nil {
		return Task{}, err
	}

	var saved Task
	err = t.coll.Optimistic(ctx, resource.Update(id, in.apply, func(ctx context.Context, _ Task, _ bool) error {
		return t.api.Put(ctx, taskPath(id), body, &saved)
	}))
	if err != nil {
		t.fail("Error updating task", err, "Could not update task.")
		return Task{}, fmt.Errorf("edit task %s: %w", id, err)
	}

	t.notify.Notify(session.Notice{Level: session.LevelSuccess, Title: "Task Updated", Message: "Your task has been successfully updated."})
	t.refetch(ctx)
	return saved, nil
}

// Delete removes task id. On failure the task reappears at its position.
func (t *Tasks) Delete(ctx context.Context, id resource.ID) error {
	if err := t.guard("delete task", "Please log in to delete tasks."); err != nil {
		return err
	}

	err := t.coll.Optimistic(ctx, resource.Remove[Task](id, func(ctx context.Context) error {
		return t.api.Delete(ctx, taskPath(id))
	}))
	if err != nil {
		t.fail("Error deleting task", err, "Could not delete task.")
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	t.notify.Notify(session.Notice{Level: session.LevelSuccess, Title: "Task Deleted", Message: "The task has been successfully deleted."})
	t.refetch(ctx)
	return nil
}

// ToggleStatus flips task id between PENDING and DONE. A task that is not
// loaded is read from the backend first. The optimistic state is kept on
// success; there is no refetch.
func (t *Tasks) ToggleStatus(ctx context.Context, id resource.ID) (Task, error) {
	if err := t.guard("update task status", "Please log in to update task status."); err != nil {
		return Task{}, err
	}
	current, ok := t.Find(id)
	if !ok {
		var err error
		if current, err = t.Get(ctx, id); err != nil {
			return Task{}, err
		}
	}

	flip := func(task Task) Task {
		task.Status = task.Status.Toggled()
		return task
	}
	toggled := flip(current)
	err := t.coll.Optimistic(ctx, resource.Update(id, flip, func(ctx context.Context, _ Task, _ bool) error {
		return t.api.Patch(ctx, taskPath(id), map[string]Status{"status": toggled.Status}, nil)
	}))
	if err != nil {
		t.fail("Error updating status", err, "Could not update task status.")
		return Task{}, fmt.Errorf("update task %s status: %w", id, err)
	}

	t.notify.Notify(session.Notice{Level: session.LevelSuccess, Title: "Task Status Updated",
		Message: fmt.Sprintf("Task '%s' marked as %s.", toggled.Title, toggled.Status)})
	return toggled, nil
}

// Get loads a single task from the backend without touching the list.
func (t *Tasks) Get(ctx context.Context, id resource.ID) (Task, error) {
	if t.auth.IsGuest() {
		for _, task := range GuestTasks(t.now()) {
			if task.ID == id {
				return task, nil
			}
		}
		return Task{}, fmt.Errorf("task %s: %w", id, apiclient.ErrNotFound)
	}
	if err := resource.Guard(t.auth, "get task"); err != nil {
		return Task{}, err
	}

	var task Task
	if err := t.api.Get(ctx, taskPath(id), nil, &task); err != nil {
		return Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

func (t *Tasks) fail(title string, err error, fallback string) {
	t.notify.Notify(session.Notice{Level: session.LevelError, Title: title, Message: apiclient.Message(err, fallback)})
}

func taskPath(id resource.ID) string {
	return "tasks/" + url.PathEscape(string(id)) + "/"
}
