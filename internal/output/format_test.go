package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"prodexa/internal/insights"
	"prodexa/internal/notifications"
	"prodexa/internal/session"
	"prodexa/internal/tasks"
	"prodexa/internal/testutil"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		task tasks.Task
		want string
	}{
		{"pending", tasks.Task{ID: "1", Title: "Buy milk", Status: tasks.StatusPending}, "   1  [ ] Buy milk\n"},
		{"done", tasks.Task{ID: "12", Title: "Ship", Status: tasks.StatusDone}, "  12  [x] Ship\n"},
		{"meta", tasks.Task{ID: "3", Title: "Report", Status: tasks.StatusPending, DueDate: "2026-03-20", Priority: 3}, "   3  [ ] Report  (due 2026-03-20, high)\n"},
		{"rfc3339 due", tasks.Task{ID: "4", Title: "x", DueDate: "2026-03-20T08:00:00Z"}, "   4  [ ] x  (due 2026-03-20)\n"},
		{"untitled", tasks.Task{ID: "5", Title: "  "}, "   5  [ ] (untitled)\n"},
		{"newlines", tasks.Task{ID: "6", Title: "a\nb"}, "   6  [ ] a b\n"},
		{"guest id", tasks.Task{ID: "guest-1", Title: "Simulated Task A", Status: tasks.StatusPending}, "guest-1  [ ] Simulated Task A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatPagination(t *testing.T) {
	var buf bytes.Buffer
	FormatPagination(&buf, tasks.Pagination{Page: 2, TotalPages: 3, Count: 25})
	FormatPagination(&buf, tasks.Pagination{Page: 1, TotalPages: 0, Count: 1})

	want := "page 2/3, 25 tasks\npage 1/1, 1 task\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatNotification(t *testing.T) {
	var buf bytes.Buffer
	FormatNotification(&buf, notifications.Notification{ID: "3", Message: "Task due soon"})
	FormatNotification(&buf, notifications.Notification{ID: "2", Message: "Welcome", IsRead: true})

	want := "   3  * Task due soon\n   2    Welcome\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	FormatProfile(&buf, session.Profile{Username: "alice", Email: "alice@example.com"}, false)
	FormatProfile(&buf, session.Profile{Username: "bob"}, false)
	FormatProfile(&buf, session.Profile{Username: session.GuestName}, true)

	want := "alice <alice@example.com>\nbob\nGuest (guest mode)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatDashboard(t *testing.T) {
	var m insights.Metrics
	raw := `{
		"workHours": {"hours": 1, "minutes": 30},
		"workHoursTrend": "increase",
		"percentOfTarget": 19,
		"focusPercent": 40,
		"dailySummary": {"labels": ["Focus", "Work"], "data": [36, 54]},
		"productiveApps": [{"name": "Editor", "minutes": 60}],
		"aiInsights": [{"icon": "TrendingUp", "text": "You're building momentum! Keep up the great work."}],
		"tasksDueToday": 2
	}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	d := &insights.Data{
		Period:  insights.PeriodWeek,
		Range:   insights.PeriodWeek.Range(day),
		Metrics: m,
		Tasks:   []tasks.Task{{ID: "7", Title: "Ship it", Status: tasks.StatusDone, DueDate: "2026-03-17", Priority: 2}},
	}

	var buf bytes.Buffer
	FormatDashboard(&buf, d)
	testutil.Golden(t, "dashboard_week", buf.Bytes())
}

func TestFormatDashboard_Guest(t *testing.T) {
	day := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	d := &insights.Data{
		Period: insights.PeriodDay,
		Range:  insights.PeriodDay.Range(day),
		Simulated: &insights.SimulatedSummary{
			FocusWork:   insights.HoursMinutes{Hours: 2, Minutes: 30},
			Breaks:      insights.HoursMinutes{Minutes: 45},
			MeetingTime: insights.HoursMinutes{Hours: 1, Minutes: 15},
		},
	}

	var buf bytes.Buffer
	FormatDashboard(&buf, d)
	testutil.Golden(t, "dashboard_guest", buf.Bytes())
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := Notifier(&buf)
	n.Notify(session.Notice{Level: session.LevelSuccess, Title: "Task Added", Message: "Your task has been successfully added."})
	n.Notify(session.Notice{Level: session.LevelError, Title: "Error", Message: "boom"})
	n.Notify(session.Notice{Level: session.LevelInfo, Message: "heads up"})

	want := "Your task has been successfully added.\nheads up\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
