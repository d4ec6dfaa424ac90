package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. Registry nil means DefaultRegistry.
type HelpCmd struct {
	Registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "prodexa help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) Standalone() bool  { return true }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}
	writeHelp(out, reg)
	return exitcode.Success
}

func writeHelp(w io.Writer, reg *Registry) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  prodexa [common flags]\n      List tasks (same as prodexa %s)\n", defaultCommand)
	for _, g := range reg.Groups() {
		fmt.Fprintf(w, "\n%s:\n", g.Title)
		for _, cmd := range g.Commands {
			fmt.Fprintf(w, "  %s\n      %s", cmd.Usage(), cmd.Synopsis())
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				fmt.Fprintf(w, " (aliases: %s)", strings.Join(aliases, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprint(w, helpNotes)
}

// defaultCommand mirrors cli.DefaultCommand, which runs when no command is given.
const defaultCommand = "tasks"

const helpNotes = `
Dates are YYYY-MM-DD. Priorities are low, medium, high or 1-3.
The password may also be given in PRODEXA_PASSWORD.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
