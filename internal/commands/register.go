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
	"prodexa/internal/session"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "prodexa register [common flags] --email <email> [--password <p>] [--confirm <p>] <username>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	username := strings.TrimSpace(strings.Join(args, " "))
	if username == "" {
		return usageError(errOut, "username required")
	}
	password := c.password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	confirm := c.confirm
	if confirm == "" {
		// a single password source confirms itself
		confirm = password
	}

	err := svc.Session.Register(ctx, session.RegisterInput{
		Username: username,
		Email:    c.email,
		Password: password,
		Confirm:  confirm,
	})
	if err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
