package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/focus"
	"prodexa/internal/service"
)

func init() {
	Register(&FocusCmd{})
}

// FocusCmd implements the focus command. It runs --cycles work/break pairs
// and stops early on interrupt.
type FocusCmd struct {
	work   time.Duration
	brk    time.Duration
	cycles int
	ticker focus.Ticker
}

// SetTicker replaces the wall clock ticker (for testing).
func (c *FocusCmd) SetTicker(t focus.Ticker) {
	c.ticker = t
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return []string{"pomodoro"} }
func (c *FocusCmd) Synopsis() string  { return "Run the focus timer" }
func (c *FocusCmd) Usage() string {
	return "prodexa focus [common flags] [--work <duration>] [--break <duration>] [--cycles <n>]"
}
func (c *FocusCmd) NeedsAuth() bool { return false }

func (c *FocusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.work, "work", 0, "")
	fs.DurationVar(&c.brk, "break", 0, "")
	fs.IntVar(&c.cycles, "cycles", 1, "")
}

func (c *FocusCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if c.cycles < 1 {
		return usageError(errOut, "invalid cycle count: %d", c.cycles)
	}
	if c.work < 0 || c.brk < 0 {
		return usageError(errOut, "durations must be positive")
	}
	if c.work > 0 {
		cfg.Settings.Focus.Work = c.work
	}
	if c.brk > 0 {
		cfg.Settings.Focus.Break = c.brk
	}

	expired := make(chan focus.State, 1)
	onTick := func(s focus.State) {
		if s.Expired {
			expired <- s
			return
		}
		if !cfg.Quiet && s.Remaining > 0 && s.Remaining%time.Minute == 0 {
			fmt.Fprintf(out, "%s %s\n", s.Session, focus.Format(s.Remaining))
		}
	}

	var opts []focus.Option
	if c.ticker != nil {
		opts = append(opts, focus.WithTicker(c.ticker))
	}
	timer := svc.NewTimer(onTick, opts...)
	defer timer.Close()

	if !cfg.Quiet {
		fmt.Fprintf(out, "work %s\n", focus.Format(cfg.Settings.Focus.Work))
	}
	timer.Start()

	for remaining := 2 * c.cycles; ; {
		select {
		case <-ctx.Done():
			timer.Close()
			if !cfg.Quiet {
				fmt.Fprintln(out, "stopped")
			}
			return exitcode.Success
		case s := <-expired:
			remaining--
			if remaining == 0 {
				if !cfg.Quiet {
					fmt.Fprintln(out, "focus complete")
				}
				return exitcode.Success
			}
			if !cfg.Quiet {
				fmt.Fprintf(out, "%s %s\n", s.Session, focus.Format(s.Remaining))
			}
			timer.Start()
		}
	}
}
