// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"prodexa/internal/insights"
	"prodexa/internal/notifications"
	"prodexa/internal/session"
	"prodexa/internal/tasks"
)

const (
	// SectionSeparator is the separator line around section headers.
	SectionSeparator = "------------"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TITLE}  (due {DATE}, {PRIORITY})"; the status box is
// "[x]" for done tasks and "[ ]" otherwise, the parenthesis only if there is
// something to show.
func FormatTask(w io.Writer, t tasks.Task) {
	box := "[ ]"
	if t.Status == tasks.StatusDone {
		box = "[x]"
	}

	var meta []string
	if t.DueDate != "" {
		if due, err := tasks.FormatDue(t.DueDate); err == nil {
			meta = append(meta, "due "+due)
		}
	}
	if p := priorityName(t.Priority); p != "" {
		meta = append(meta, p)
	}

	line := fmt.Sprintf("%4s  %s %s", t.ID, box, normalizeTitle(t.Title))
	if len(meta) > 0 {
		line += "  (" + strings.Join(meta, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats every field of a single task.
func FormatTaskDetail(w io.Writer, t tasks.Task) {
	fmt.Fprintf(w, "id:       %s\n", t.ID)
	fmt.Fprintf(w, "title:    %s\n", normalizeTitle(t.Title))
	fmt.Fprintf(w, "status:   %s\n", t.Status)
	if p := priorityName(t.Priority); p != "" {
		fmt.Fprintf(w, "priority: %s\n", p)
	}
	if t.DueDate != "" {
		fmt.Fprintf(w, "due:      %s\n", t.DueDate)
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(w, "notes:    %s\n", oneLine(d))
	}
}

// FormatPagination formats the page footer of a task listing.
func FormatPagination(w io.Writer, p tasks.Pagination) {
	noun := "tasks"
	if p.Count == 1 {
		noun = "task"
	}
	fmt.Fprintf(w, "page %d/%d, %d %s\n", p.Page, max(p.TotalPages, 1), p.Count, noun)
}

// FormatNotification formats a notification line. Unread ones are marked with "*".
func FormatNotification(w io.Writer, n notifications.Notification) {
	mark := " "
	if !n.IsRead {
		mark = "*"
	}
	fmt.Fprintf(w, "%4s  %s %s\n", n.ID, mark, oneLine(n.Message))
}

// FormatProfile formats the session's profile.
func FormatProfile(w io.Writer, p session.Profile, guest bool) {
	if guest {
		fmt.Fprintf(w, "%s (guest mode)\n", p.Username)
		return
	}
	if p.Email == "" {
		fmt.Fprintln(w, p.Username)
		return
	}
	fmt.Fprintf(w, "%s <%s>\n", p.Username, p.Email)
}

// FormatDashboard formats a loaded dashboard.
func FormatDashboard(w io.Writer, d *insights.Data) {
	start, end := d.Range.Start.Format(tasks.DateLayout), d.Range.End.Format(tasks.DateLayout)
	header := fmt.Sprintf("%s %s", d.Period, start)
	if start != end {
		header += " .. " + end
	}
	FormatSectionHeader(w, header)

	if s := d.Simulated; s != nil {
		fmt.Fprintf(w, "focus work:   %s\n", s.FocusWork)
		fmt.Fprintf(w, "breaks:       %s\n", s.Breaks)
		fmt.Fprintf(w, "meeting time: %s\n", s.MeetingTime)
		fmt.Fprintln(w, "(simulated data in guest mode)")
		return
	}

	m := d.Metrics
	fmt.Fprintf(w, "work hours:   %s (%s)\n", m.WorkHours, m.WorkHoursTrend)
	fmt.Fprintf(w, "of target:    %d%%\n", m.PercentOfTarget)
	fmt.Fprintf(w, "focus:        %d%%\n", m.FocusPercent)
	fmt.Fprintf(w, "due today:    %d\n", m.TasksDueToday)
	for i, label := range m.DailySummary.Labels {
		if i < len(m.DailySummary.Data) {
			fmt.Fprintf(w, "  %-12s %d min\n", label+":", m.DailySummary.Data[i])
		}
	}
	if len(m.ProductiveApps) > 0 {
		fmt.Fprintln(w, "productive apps:")
		for _, app := range m.ProductiveApps {
			fmt.Fprintf(w, "  %-12s %d min\n", app.Name+":", app.Minutes)
		}
	}
	for _, in := range m.AIInsights {
		fmt.Fprintf(w, "insight: %s\n", in.Text)
	}

	if len(d.Tasks) > 0 {
		FormatSectionHeader(w, "tasks")
		for _, t := range d.Tasks {
			FormatTask(w, t)
		}
	}
}

// FormatSectionHeader formats a section header.
func FormatSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, SectionSeparator)
}

// Notifier prints the message of success and info notices to w. Warnings and
// errors are left to the command, which reports them on stderr.
func Notifier(w io.Writer) session.Notifier {
	return session.NotifierFunc(func(n session.Notice) {
		switch n.Level {
		case session.LevelSuccess, session.LevelInfo:
			fmt.Fprintln(w, oneLine(n.Message))
		}
	})
}

func priorityName(p int) string {
	switch p {
	case tasks.PriorityLow:
		return "low"
	case tasks.PriorityMedium:
		return "medium"
	case tasks.PriorityHigh:
		return "high"
	}
	return ""
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
