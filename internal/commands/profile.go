package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command.
type ProfileCmd struct {
	email string
}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return nil }
func (c *ProfileCmd) Synopsis() string  { return "Change the account email" }
func (c *ProfileCmd) Usage() string     { return "prodexa profile [common flags] --email <email>" }
func (c *ProfileCmd) NeedsAuth() bool   { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if strings.TrimSpace(c.email) == "" {
		return usageError(errOut, "--email required")
	}
	if _, err := svc.Session.UpdateProfile(ctx, strings.TrimSpace(c.email)); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
