// Package tasks is the task list: fetch with filters and pages, and optimistic
// create, update, delete and status toggles against the backend.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"prodexa/internal/resource"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
)

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// ParseStatus accepts pending/done in any case.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusDone:
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q (want pending or done)", s)
}

// Priorities.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task is a task as the backend returns it.
type Task struct {
	ID                resource.ID `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	DueDate           string      `json:"due_date,omitempty"`
	Status            Status      `json:"status"`
	Priority          int         `json:"priority,omitempty"`
	RecurrencePattern string      `json:"recurrence_pattern,omitempty"`
	DurationMinutes   *int        `json:"duration_minutes,omitempty"`
	CreatedAt         string      `json:"created_at,omitempty"`

	// Provisional marks a locally inserted task that has no server id yet.
	Provisional bool `json:"-"`
}

func (t Task) EntityID() resource.ID { return t.ID }

// Due returns the due date, if set and parseable.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.DueDate[:min(len(t.DueDate), len(DateLayout))])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// FormatDue normalizes a date to YYYY-MM-DD. It accepts YYYY-MM-DD and RFC 3339.
// An empty input yields an empty result.
func FormatDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.Format(DateLayout), nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.Format(DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// ErrInvalidInput is returned for task input rejected before any request.
var ErrInvalidInput = errors.New("invalid task")

// Input is the writable part of a task.
type Input struct {
	Title       string
	Description string
	// DueDate is YYYY-MM-DD or RFC 3339; it is sent as YYYY-MM-DD.
	DueDate  string
	Priority int
	Status   Status
}

func (in Input) payload() (map[string]any, error) {
	due, err := FormatDue(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Priority != 0 && (in.Priority < PriorityLow || in.Priority > PriorityHigh) {
		return nil, fmt.Errorf("%w: priority must be 1, 2 or 3", ErrInvalidInput)
	}

	p := map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"due_date":    nil,
	}
	if due != "" {
		p["due_date"] = due
	}
	if in.Priority != 0 {
		p["priority"] = in.Priority
	}
	if in.Status != "" {
		p["status"] = in.Status
	}
	return p, nil
}

// apply copies the input onto t as the server would.
func (in Input) apply(t Task) Task {
	t.Title = in.Title
	t.Description = in.Description
	due, _ := FormatDue(in.DueDate)
	t.DueDate = due
	if in.Priority != 0 {
		t.Priority = in.Priority
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	return t
}

// Filter narrows a task listing.
type Filter struct {
	Search   string
	Status   Status
	Priority int
	// StartDate and EndDate bound due dates, YYYY-MM-DD.
	StartDate string
	EndDate   string
	Page      int
}

// Pagination describes the last committed page.
type Pagination struct {
	Page       int
	TotalPages int
	Count      int
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// GuestTasks returns the fixed sample list served in guest mode.
func GuestTasks(today time.Time) []Task {
	due := today.Format(DateLayout)
	return []Task{
		{ID: "guest-1", Title: "Simulated Task A", Status: StatusPending, DueDate: due},
		{ID: "guest-2", Title: "Simulated Task B", Status: StatusPending, DueDate: due},
		{ID: "guest-3", Title: "Simulated Task C", Status: StatusPending, DueDate: due},
	}
}
