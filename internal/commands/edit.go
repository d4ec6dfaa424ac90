package commands

import (
	"context"
	"flag"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
	"prodexa/internal/tasks"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the flags that are given change;
// the rest of the task is kept as the backend has it.
type EditCmd struct {
	title    *string
	desc     *string
	due      *string
	priority *string
	status   *string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "prodexa edit [common flags] [--title <t>] [--desc <text>] [--due <date>] [--priority <p>] [--status <s>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.due, c.priority, c.status = nil, nil, nil, nil, nil
	fs.Func("title", "", setOnce(&c.title))
	fs.Func("desc", "", setOnce(&c.desc))
	fs.Func("due", "", setOnce(&c.due))
	fs.Func("priority", "", setOnce(&c.priority))
	fs.Func("status", "", setOnce(&c.status))
}

// setOnce records that a flag was given, even with an empty value.
func setOnce(dst **string) func(string) error {
	return func(v string) error {
		*dst = &v
		return nil
	}
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if c.title == nil && c.desc == nil && c.due == nil && c.priority == nil && c.status == nil {
		return usageError(errOut, "nothing to change")
	}

	current, err := svc.Tasks.Get(ctx, id)
	if err != nil {
		return fail(errOut, err)
	}

	in := tasks.Input{
		Title:       current.Title,
		Description: current.Description,
		DueDate:     current.DueDate,
		Priority:    current.Priority,
		Status:      current.Status,
	}
	if c.title != nil {
		in.Title = *c.title
	}
	if c.desc != nil {
		in.Description = *c.desc
	}
	if c.due != nil {
		in.DueDate = *c.due
	}
	if c.priority != nil {
		if in.Priority, err = parsePriority(*c.priority); err != nil {
			return usageError(errOut, "%v", err)
		}
	}
	if c.status != nil {
		if in.Status, err = tasks.ParseStatus(*c.status); err != nil {
			return usageError(errOut, "%v", err)
		}
	}

	if _, err := svc.Tasks.Update(ctx, id, in); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
