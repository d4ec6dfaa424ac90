// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"prodexa/internal/config"
	"prodexa/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a resolved session,
	// authenticated or guest. The dispatcher resolves the stored session
	// before Run and rejects anonymous users.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// svc is nil for Standalone commands.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc *service.Service, args []string, out, errOut io.Writer) int
}

// Standalone is implemented by commands that run without a service,
// such as help and version.
type Standalone interface {
	Standalone() bool
}

// IsStandalone reports whether cmd runs without a service.
func IsStandalone(cmd Command) bool {
	s, ok := cmd.(Standalone)
	return ok && s.Standalone()
}
