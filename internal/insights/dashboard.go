// Package insights loads the productivity dashboard and AI tips.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"prodexa/internal/apiclient"
	"prodexa/internal/resource"
	"prodexa/internal/session"
	"prodexa/internal/tasks"
)

// Period selects the dashboard date range.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod parses a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q (want day, week, month or year)", s)
}

// Range is an inclusive date range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Range returns the range of p containing day. Weeks start on Sunday.
func (p Period) Range(day time.Time) Range {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	switch p {
	case PeriodWeek:
		start := d.AddDate(0, 0, -int(d.Weekday()))
		return Range{Start: start, End: start.AddDate(0, 0, 6)}
	case PeriodMonth:
		start := d.AddDate(0, 0, 1-d.Day())
		return Range{Start: start, End: start.AddDate(0, 1, -1)}
	case PeriodYear:
		return Range{
			Start: time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location()),
			End:   time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location()),
		}
	}
	return Range{Start: d, End: d}
}

func (r Range) query() url.Values {
	q := url.Values{}
	q.Set("start_date", r.Start.Format(tasks.DateLayout))
	q.Set("end_date", r.End.Format(tasks.DateLayout))
	return q
}

// HoursMinutes is a duration as the dashboard reports it.
type HoursMinutes struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (h HoursMinutes) String() string {
	return fmt.Sprintf("%dh %02dm", h.Hours, h.Minutes)
}

// Metrics is the dashboard-metrics payload.
type Metrics struct {
	WorkHours       HoursMinutes `json:"workHours"`
	WorkHoursTrend  string       `json:"workHoursTrend"`
	PercentOfTarget int          `json:"percentOfTarget"`
	FocusPercent    int          `json:"focusPercent"`
	DailySummary    struct {
		Labels []string `json:"labels"`
		Data   []int    `json:"data"`
	} `json:"dailySummary"`
	ProductiveApps []struct {
		Name    string `json:"name"`
		Minutes int    `json:"minutes"`
	} `json:"productiveApps"`
	AIInsights []struct {
		Icon string `json:"icon"`
		Text string `json:"text"`
	} `json:"aiInsights"`
	TasksDueToday int `json:"tasksDueToday"`
}

// SimulatedSummary is the fixed summary shown in guest mode.
type SimulatedSummary struct {
	FocusWork   HoursMinutes
	Breaks      HoursMinutes
	MeetingTime HoursMinutes
}

// Data is one loaded dashboard.
type Data struct {
	Period  Period
	Range   Range
	Metrics Metrics
	Tasks   []tasks.Task

	// Simulated is set, and Metrics empty, in guest mode.
	Simulated *SimulatedSummary
}

var guestSummary = SimulatedSummary{
	FocusWork:   HoursMinutes{Hours: 2, Minutes: 30},
	Breaks:      HoursMinutes{Hours: 0, Minutes: 45},
	MeetingTime: HoursMinutes{Hours: 1, Minutes: 15},
}

// Dashboard loads dashboard data. Starting a load cancels the previous one.
type Dashboard struct {
	api  *apiclient.Client
	auth resource.AuthState
	log  *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewDashboard creates a Dashboard. A nil logger discards.
func NewDashboard(api *apiclient.Client, auth resource.AuthState, log *slog.Logger) *Dashboard {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dashboard{api: api, auth: auth, log: log}
}

// Load fetches metrics and the tasks due in the period containing day, in
// parallel. A load superseded by a newer one returns resource.ErrSuperseded.
// Failures are returned as *session.FailureError.
func (d *Dashboard) Load(ctx context.Context, day time.Time, period Period) (*Data, error) {
	ctx, gen := d.begin(ctx)
	defer d.end(gen)

	rng := period.Range(day)
	if d.auth.IsGuest() {
		s := guestSummary
		return &Data{Period: period, Range: rng, Simulated: &s}, nil
	}
	if !d.auth.IsAuthenticated() {
		return nil, &session.FailureError{Message: "Authentication required for dashboard data.", Err: resource.ErrLoginRequired}
	}

	data := &Data{Period: period, Range: rng}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.api.Get(gctx, "dashboard-metrics/", rng.query(), &data.Metrics)
	})
	g.Go(func() error {
		page, err := apiclient.GetList[tasks.Task](gctx, d.api, "tasks/", rng.query())
		data.Tasks = page.Items
		return err
	})
	err := g.Wait()

	if !d.current(gen) {
		return nil, resource.ErrSuperseded
	}
	if err != nil {
		d.log.Warn("dashboard load failed", "period", period, "error", err)
		return nil, &session.FailureError{Message: dashboardMessage(err), Err: err}
	}
	return data, nil
}

// Close cancels an in-flight load.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}

func (d *Dashboard) begin(ctx context.Context) (context.Context, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	ctx, d.cancel = context.WithCancel(ctx)
	return ctx, d.gen
}

func (d *Dashboard) end(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.gen && d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Dashboard) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

func dashboardMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return "Session expired. Please log in again."
		case apiErr.Status == http.StatusForbidden:
			return "You do not have permission to view this dashboard."
		case apiErr.Status >= http.StatusInternalServerError:
			return "Server error. Please try again later."
		case apiErr.Detail != "":
			return apiErr.Detail
		}
	}
	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, apiclient.ErrRefreshFailed) || errors.Is(err, apiclient.ErrNoRefreshToken) {
		return "Session expired. Please log in again."
	}
	if errors.Is(err, apiclient.ErrNetwork) {
		return "Network error. Please check your internet connection."
	}
	return "Failed to load dashboard data. Please try again."
}
