package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"prodexa/internal/backend/googletasks"
	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

func init() {
	Register(&GoogleLoginCmd{})
}

// GoogleLoginCmd implements the google-login command.
type GoogleLoginCmd struct {
	force bool
}

func (c *GoogleLoginCmd) Name() string      { return "google-login" }
func (c *GoogleLoginCmd) Aliases() []string { return nil }
func (c *GoogleLoginCmd) Synopsis() string  { return "Connect Google Tasks for export" }
func (c *GoogleLoginCmd) Usage() string     { return "prodexa google-login [common flags] [--force]" }
func (c *GoogleLoginCmd) NeedsAuth() bool   { return false }

func (c *GoogleLoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *GoogleLoginCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasGoogleClient() {
		fmt.Fprintf(errOut, "error: missing OAuth client file: %s\n", cfg.GoogleClientPath())
		return exitcode.UserError
	}

	if !c.force && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already connected")
		}
		return exitcode.Success
	}

	// the consent URL must be visible even with --quiet
	if err := googletasks.Authorize(ctx, cfg, errOut); err != nil {
		fmt.Fprintf(errOut, "error: google login failed: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
