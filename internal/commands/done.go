package commands

import (
	"context"
	"flag"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It flips the status, so running it on
// a done task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task between pending and done" }
func (c *DoneCmd) Usage() string     { return "prodexa done [common flags] <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if _, err := svc.Tasks.ToggleStatus(ctx, id); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
