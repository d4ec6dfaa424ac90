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
	Register(&TipCmd{})
}

// TipCmd implements the tip command. Anyone may ask for a tip, so the
// session is resolved here instead of by the dispatcher.
type TipCmd struct{}

func (c *TipCmd) Name() string      { return "tip" }
func (c *TipCmd) Aliases() []string { return nil }
func (c *TipCmd) Synopsis() string  { return "Show a productivity suggestion" }
func (c *TipCmd) Usage() string     { return "prodexa tip [common flags]" }
func (c *TipCmd) NeedsAuth() bool   { return false }

func (c *TipCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TipCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	svc.Session.Init(ctx)

	s, err := svc.Tips.Suggest(ctx)
	fmt.Fprintln(out, s.Suggestion)
	if s.Message != "" && !cfg.Quiet {
		fmt.Fprintln(out, s.Message)
	}
	if err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
