package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"prodexa/internal/apiclient"
	"prodexa/internal/backend/googletasks"
	"prodexa/internal/exitcode"
	"prodexa/internal/resource"
	"prodexa/internal/session"
	"prodexa/internal/tasks"
)

// fail prints err to errOut as "error: ..." and returns its exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %s\n", errorMessage(err))
	return exitCodeFor(err)
}

// usageError prints a usage problem and returns exitcode.UserError.
func usageError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

func errorMessage(err error) string {
	var fe *session.FailureError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if errors.Is(err, resource.ErrLoginRequired) {
		if strings.Contains(err.Error(), "guest mode") {
			return err.Error() + " (run: prodexa login)"
		}
		return "not logged in (run: prodexa login)"
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) || errors.Is(err, apiclient.ErrNetwork) {
		return apiclient.Message(err, err.Error())
	}
	return err.Error()
}

// exitCodeFor maps an error to the exit code contract:
// auth problems are 2, rejected input is 1, everything else is a backend error.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, resource.ErrLoginRequired),
		errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, apiclient.ErrUnauthorized),
		errors.Is(err, apiclient.ErrRefreshFailed),
		errors.Is(err, apiclient.ErrNoRefreshToken),
		errors.Is(err, googletasks.ErrNotConnected):
		return exitcode.AuthError
	case errors.Is(err, session.ErrPasswordMismatch),
		errors.Is(err, tasks.ErrInvalidInput),
		errors.Is(err, apiclient.ErrValidation),
		errors.Is(err, apiclient.ErrNotFound),
		errors.Is(err, googletasks.ErrNoClientFile):
		return exitcode.UserError
	}

	// a failure with no cause was rejected locally
	var fe *session.FailureError
	if errors.As(err, &fe) && fe.Err == nil {
		return exitcode.UserError
	}
	return exitcode.BackendError
}
