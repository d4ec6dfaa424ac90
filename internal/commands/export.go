package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/resource"
	"prodexa/internal/service"
	"prodexa/internal/tasks"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	listName string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Copy pending tasks to Google Tasks" }
func (c *ExportCmd) Usage() string     { return "prodexa export [common flags] [--list <list-name>]" }
func (c *ExportCmd) NeedsAuth() bool   { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if err := resource.Guard(svc.Session, "export tasks"); err != nil {
		return fail(errOut, err)
	}

	pending, err := pendingTasks(ctx, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if len(pending) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "nothing to export")
		}
		return exitcode.Success
	}

	client, err := svc.Google(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	res, err := client.Export(ctx, c.listName, pending)
	if err != nil {
		if res.Exported > 0 {
			fmt.Fprintf(errOut, "exported %d of %d tasks before the failure\n", res.Exported, len(pending))
		}
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		noun := "tasks"
		if res.Exported == 1 {
			noun = "task"
		}
		fmt.Fprintf(out, "exported %d %s to %s\n", res.Exported, noun, res.List.Title)
	}
	return exitcode.Success
}

// pendingTasks walks every page of pending tasks.
func pendingTasks(ctx context.Context, svc *service.Service) ([]tasks.Task, error) {
	var all []tasks.Task
	err := svc.Tasks.Fetch(ctx, tasks.Filter{Status: tasks.StatusPending})
	for err == nil {
		all = append(all, svc.Tasks.Tasks()...)
		if !svc.Tasks.Pagination().HasNext() {
			return all, nil
		}
		err = svc.Tasks.NextPage(ctx)
	}
	return nil, err
}
