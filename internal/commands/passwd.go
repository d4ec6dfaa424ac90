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
	Register(&PasswdCmd{})
}

// PasswdCmd implements the passwd command.
type PasswdCmd struct {
	old     string
	new     string
	confirm string
}

func (c *PasswdCmd) Name() string      { return "passwd" }
func (c *PasswdCmd) Aliases() []string { return nil }
func (c *PasswdCmd) Synopsis() string  { return "Change the account password" }
func (c *PasswdCmd) Usage() string {
	return "prodexa passwd [common flags] --old <p> --new <p> --confirm <p>"
}
func (c *PasswdCmd) NeedsAuth() bool { return true }

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.old, "old", "", "")
	fs.StringVar(&c.new, "new", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *PasswdCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.Session.ChangePassword(ctx, c.old, c.new, c.confirm); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
