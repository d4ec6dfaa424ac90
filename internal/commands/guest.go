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
	Register(&GuestCmd{})
}

// GuestCmd implements the guest command.
type GuestCmd struct{}

func (c *GuestCmd) Name() string      { return "guest" }
func (c *GuestCmd) Aliases() []string { return nil }
func (c *GuestCmd) Synopsis() string  { return "Continue in guest mode with sample data" }
func (c *GuestCmd) Usage() string     { return "prodexa guest [common flags]" }
func (c *GuestCmd) NeedsAuth() bool   { return false }

func (c *GuestCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *GuestCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if err := cfg.EnsureDir(); err != nil {
		return fail(errOut, err)
	}
	svc.Session.GuestLogin()
	return exitcode.Success
}
