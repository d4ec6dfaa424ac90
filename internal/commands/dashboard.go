package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/insights"
	"prodexa/internal/output"
	"prodexa/internal/service"
	"prodexa/internal/tasks"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd implements the dashboard command.
type DashboardCmd struct {
	period string
	date   string
	now    func() time.Time
}

// SetClock sets the clock used when --date is not given (for testing).
func (c *DashboardCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"stats"} }
func (c *DashboardCmd) Synopsis() string  { return "Show work metrics for a period" }
func (c *DashboardCmd) Usage() string {
	return "prodexa dashboard [common flags] [--period day|week|month|year] [--date <date>]"
}
func (c *DashboardCmd) NeedsAuth() bool { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.period, "period", string(insights.PeriodWeek), "")
	fs.StringVar(&c.date, "date", "", "")
}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	period, err := insights.ParsePeriod(c.period)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	day := time.Now()
	if c.now != nil {
		day = c.now()
	}
	if c.date != "" {
		if day, err = time.ParseInLocation(tasks.DateLayout, c.date, time.Local); err != nil {
			return usageError(errOut, "invalid date %q (want YYYY-MM-DD)", c.date)
		}
	}

	data, err := svc.Dashboard.Load(ctx, day, period)
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatDashboard(out, data)
	return exitcode.Success
}
