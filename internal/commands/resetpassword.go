package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

func init() {
	Register(&ResetPasswordCmd{})
}

// ResetPasswordCmd implements the reset-password command.
// With --email it requests a reset link; with --uid, --token and --new it
// sets the new password from that link.
type ResetPasswordCmd struct {
	email string
	uid   string
	token string
	new   string
}

func (c *ResetPasswordCmd) Name() string      { return "reset-password" }
func (c *ResetPasswordCmd) Aliases() []string { return nil }
func (c *ResetPasswordCmd) Synopsis() string  { return "Request or confirm a password reset" }
func (c *ResetPasswordCmd) Usage() string {
	return "prodexa reset-password [common flags] (--email <email> | --uid <uid> --token <token> --new <p>)"
}
func (c *ResetPasswordCmd) NeedsAuth() bool { return false }

func (c *ResetPasswordCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.uid, "uid", "", "")
	fs.StringVar(&c.token, "token", "", "")
	fs.StringVar(&c.new, "new", "", "")
}

func (c *ResetPasswordCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	var (
		msg string
		err error
	)
	switch {
	case c.email != "" && c.uid == "":
		msg, err = svc.Session.RequestPasswordReset(ctx, c.email)
	case c.email == "" && c.uid != "" && c.token != "" && c.new != "":
		msg, err = svc.Session.ConfirmPasswordReset(ctx, c.uid, c.token, c.new)
	default:
		return usageError(errOut, "use either --email, or --uid with --token and --new")
	}
	if err != nil {
		return fail(errOut, err)
	}

	if msg != "" && !cfg.Quiet {
		fmt.Fprintln(out, msg)
	}
	return exitcode.Success
}
