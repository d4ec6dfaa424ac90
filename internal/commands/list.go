package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/output"
	"prodexa/internal/service"
	"prodexa/internal/tasks"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command. It is also what runs when prodexa
// is called without a command.
type TasksCmd struct {
	search   string
	status   string
	priority string
	from     string
	to       string
	page     int
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"list", "ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks" }
func (c *TasksCmd) Usage() string {
	return "prodexa tasks [common flags] [--search <q>] [--status pending|done] [--priority <p>] [--from <date>] [--to <date>] [--page <n>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.from, "from", "", "")
	fs.StringVar(&c.to, "to", "", "")
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	f, err := c.filter()
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	if err := svc.Tasks.Fetch(ctx, f); err != nil {
		return fail(errOut, err)
	}

	items := svc.Tasks.Tasks()
	if len(items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, t := range items {
		output.FormatTask(out, t)
	}
	if !cfg.Quiet {
		output.FormatPagination(out, svc.Tasks.Pagination())
	}
	return exitcode.Success
}

func (c *TasksCmd) filter() (tasks.Filter, error) {
	if c.page < 1 {
		return tasks.Filter{}, fmt.Errorf("invalid page number: %d", c.page)
	}
	f := tasks.Filter{Search: c.search, Page: c.page}

	if c.status != "" {
		s, err := tasks.ParseStatus(c.status)
		if err != nil {
			return tasks.Filter{}, err
		}
		f.Status = s
	}

	p, err := parsePriority(c.priority)
	if err != nil {
		return tasks.Filter{}, err
	}
	f.Priority = p

	if f.StartDate, err = tasks.FormatDue(c.from); err != nil {
		return tasks.Filter{}, err
	}
	if f.EndDate, err = tasks.FormatDue(c.to); err != nil {
		return tasks.Filter{}, err
	}
	return f, nil
}
