package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/exitcode"
	"prodexa/internal/output"
	"prodexa/internal/service"
)

func init() {
	Register(&NotesCmd{})
	Register(&ReadCmd{})
	Register(&RmNoteCmd{})
}

// NotesCmd implements the notes command.
type NotesCmd struct {
	unread bool
}

func (c *NotesCmd) Name() string      { return "notes" }
func (c *NotesCmd) Aliases() []string { return []string{"notifications"} }
func (c *NotesCmd) Synopsis() string  { return "List notifications" }
func (c *NotesCmd) Usage() string     { return "prodexa notes [common flags] [--unread]" }
func (c *NotesCmd) NeedsAuth() bool   { return true }

func (c *NotesCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.unread, "unread", false, "")
}

func (c *NotesCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.Notifications.Fetch(ctx); err != nil {
		return fail(errOut, err)
	}

	shown := 0
	for _, n := range svc.Notifications.Items() {
		if c.unread && n.IsRead {
			continue
		}
		output.FormatNotification(out, n)
		shown++
	}
	if !cfg.Quiet {
		if shown == 0 {
			fmt.Fprintln(out, "no notifications")
		} else {
			fmt.Fprintf(out, "%d unread\n", svc.Notifications.UnreadCount())
		}
	}
	return exitcode.Success
}

// ReadCmd implements the read command.
type ReadCmd struct {
	all bool
}

func (c *ReadCmd) Name() string      { return "read" }
func (c *ReadCmd) Aliases() []string { return nil }
func (c *ReadCmd) Synopsis() string  { return "Mark notifications as read" }
func (c *ReadCmd) Usage() string     { return "prodexa read [common flags] (--all | <id>)" }
func (c *ReadCmd) NeedsAuth() bool   { return true }

func (c *ReadCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ReadCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	if c.all {
		if len(args) > 0 {
			return usageError(errOut, "cannot use both --all and an id")
		}
		if err := svc.Notifications.Fetch(ctx); err != nil {
			return fail(errOut, err)
		}
		n, err := svc.Notifications.MarkAllRead(ctx)
		if err != nil {
			return fail(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "marked %d as read\n", n)
		}
		return exitcode.Success
	}

	id, err := parseID(args, "notification")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if err := svc.Notifications.MarkRead(ctx, id); err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RmNoteCmd implements the rmnote command.
type RmNoteCmd struct{}

func (c *RmNoteCmd) Name() string      { return "rmnote" }
func (c *RmNoteCmd) Aliases() []string { return nil }
func (c *RmNoteCmd) Synopsis() string  { return "Delete a notification" }
func (c *RmNoteCmd) Usage() string     { return "prodexa rmnote [common flags] <id>" }
func (c *RmNoteCmd) NeedsAuth() bool   { return true }

func (c *RmNoteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmNoteCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "notification")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if err := svc.Notifications.Delete(ctx, id); err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
