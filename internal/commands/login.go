package commands

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "PRODEXA_PASSWORD"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with username and password" }
func (c *LoginCmd) Usage() string {
	return "prodexa login [common flags] [--password <password>] <username>"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	username := strings.TrimSpace(strings.Join(args, " "))
	if username == "" {
		return usageError(errOut, "username required")
	}
	password := c.password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	if password == "" {
		return usageError(errOut, "password required (use --password or %s)", PasswordEnv)
	}

	if err := cfg.EnsureDir(); err != nil {
		return fail(errOut, err)
	}
	if err := svc.Session.Login(ctx, username, password); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
