package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
	"prodexa/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	due      string
	priority string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "prodexa add [common flags] [--desc <text>] [--due <date>] [--priority <p>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return usageError(errOut, "title required")
	}
	priority, err := parsePriority(c.priority)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	_, err = svc.Tasks.Create(ctx, tasks.Input{
		Title:       title,
		Description: c.desc,
		DueDate:     c.due,
		Priority:    priority,
	})
	if err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
