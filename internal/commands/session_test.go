package commands_test

import (
	"strings"
	"testing"

	"prodexa/internal/commands"
	"prodexa/internal/exitcode"
	"prodexa/internal/testutil"
)

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	var out, errOut strings.Builder

	code := (&commands.VersionCmd{}).Run(env.ctx, env.config(false), nil, nil, &out, &errOut)

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", errOut.String())
	expectOutput(t, "stdout", "prodexa 0.1.0\n", out.String())
}

func TestHelpCommand_ListsEveryCommand(t *testing.T) {
	env := newTestEnv(t)
	var out, errOut strings.Builder

	code := (&commands.HelpCmd{}).Run(env.ctx, env.config(false), nil, nil, &out, &errOut)

	expectCode(t, exitcode.Success, code)
	if !strings.HasPrefix(out.String(), "Usage:\n") {
		t.Errorf("expected help to start with Usage:, got %q", out.String())
	}
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(out.String(), "prodexa "+cmd.Name()) {
			t.Errorf("help does not mention %q", cmd.Name())
		}
	}
}

func TestLoginCommand_Success(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := env.run(&commands.LoginCmd{}, "--password", "pw123", "alice")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Welcome back!\n", stdout)

	snap := env.session()
	if snap.AccessToken == "" || snap.RefreshToken == "" {
		t.Error("expected tokens to be stored")
	}
	if snap.Username != "alice" || snap.Email != "alice@example.com" {
		t.Errorf("expected stored profile alice <alice@example.com>, got %s <%s>", snap.Username, snap.Email)
	}
}

func TestLoginCommand_Quiet(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, code := env.runQuiet(&commands.LoginCmd{}, "--password", "pw123", "alice")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
}

func TestLoginCommand_PasswordFromEnv(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(commands.PasswordEnv, "pw123")

	_, stderr, code := env.run(&commands.LoginCmd{}, "alice")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := env.run(&commands.LoginCmd{}, "--password", "nope", "alice")

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stdout", "", stdout)
	expectOutput(t, "stderr", "error: Login failed: No active account found with the given credentials\n", stderr)
	if !env.session().LoggedOut() {
		t.Error("expected no stored session")
	}
}

func TestLoginCommand_MissingArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no username", []string{"--password", "pw123"}, "error: username required\n"},
		{"no password", []string{"alice"}, "error: password required (use --password or PRODEXA_PASSWORD)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			t.Setenv(commands.PasswordEnv, "")

			_, stderr, code := env.run(&commands.LoginCmd{}, tt.args...)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := env.fb.TotalCalls(); n != 0 {
				t.Errorf("expected no backend calls, got %d", n)
			}
		})
	}
}

func TestLogoutCommand_ClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, stderr, code := env.run(&commands.LogoutCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "You have been successfully logged out.\n", stdout)
	if !env.session().LoggedOut() {
		t.Error("expected session to be cleared")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := env.run(&commands.LogoutCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "not logged in\n", stdout)
}

func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, code := env.runQuiet(&commands.LogoutCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
}

func TestGuestCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, code := env.run(&commands.GuestCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "You are in guest mode. Some features are limited.\n", stdout)
	if !env.session().IsGuest {
		t.Error("expected guest flag to be stored")
	}
	if n := env.fb.TotalCalls(); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestGuestCommand_ReplacesLogin(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	_, _, code := env.run(&commands.GuestCmd{})

	expectCode(t, exitcode.Success, code)
	snap := env.session()
	if !snap.IsGuest || snap.AccessToken != "" {
		t.Errorf("expected guest session without tokens, got %+v", snap)
	}
}

func TestRegisterCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := env.run(&commands.RegisterCmd{},
		"--email", "bob@example.com", "--password", "secret1", "--confirm", "secret1", "bob")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "You can now log in with your credentials.\n", stdout)
	if env.fb.Password("bob") != "secret1" {
		t.Error("expected bob to be registered")
	}
	if !env.session().LoggedOut() {
		t.Error("expected registration not to log in")
	}
}

func TestRegisterCommand_Failures(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		code  int
		want  string
		calls int
	}{
		{
			name: "mismatch",
			args: []string{"--email", "bob@example.com", "--password", "secret1", "--confirm", "secret2", "bob"},
			code: exitcode.UserError,
			want: "error: Passwords do not match.\n",
		},
		{
			name:  "taken",
			args:  []string{"--email", "a@example.com", "--password", "secret1", "alice"},
			code:  exitcode.UserError,
			want:  "error: A user with that username already exists.\n",
			calls: 1,
		},
		{
			name: "no username",
			args: []string{"--password", "secret1"},
			code: exitcode.UserError,
			want: "error: username required\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			stdout, stderr, code := env.run(&commands.RegisterCmd{}, tt.args...)

			expectCode(t, tt.code, code)
			expectOutput(t, "stdout", "", stdout)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := env.fb.Calls(testutil.RouteRegister); n != tt.calls {
				t.Errorf("expected %d register calls, got %d", tt.calls, n)
			}
		})
	}
}

func TestWhoamiCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, stderr, code := env.run(&commands.WhoamiCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "alice <alice@example.com>\n", stdout)
}

func TestWhoamiCommand_Guest(t *testing.T) {
	env := newTestEnv(t)
	env.guest()

	stdout, _, code := env.run(&commands.WhoamiCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "Guest (guest mode)\n", stdout)
	if n := env.fb.TotalCalls(); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestWhoamiCommand_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run(&commands.WhoamiCmd{})

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", "error: Please log in to view your profile.\n", stderr)
}

func TestWhoamiCommand_RejectedSession(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.ExpireAccessTokens()
	env.fb.RevokeRefreshTokens()

	_, stderr, code := env.run(&commands.WhoamiCmd{})

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", "error: Please log in to view your profile.\n", stderr)
	if !env.session().LoggedOut() {
		t.Error("expected rejected session to be cleared")
	}
}

func TestProfileCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, stderr, code := env.run(&commands.ProfileCmd{}, "--email", "new@example.com")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Profile updated successfully!\n", stdout)

	stdout, _, _ = env.run(&commands.WhoamiCmd{})
	expectOutput(t, "whoami", "alice <new@example.com>\n", stdout)
}

func TestProfileCommand_Invalid(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	_, stderr, code := env.run(&commands.ProfileCmd{})
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: --email required\n", stderr)

	_, stderr, code = env.run(&commands.ProfileCmd{}, "--email", "not-an-email")
	expectCode(t, exitcode.UserError, code)
	if !strings.Contains(stderr, "Enter a valid email address.") {
		t.Errorf("expected backend field error, got %q", stderr)
	}
}

func TestPasswdCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, stderr, code := env.run(&commands.PasswdCmd{}, "--old", "pw123", "--new", "pw456", "--confirm", "pw456")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Password changed successfully!\n", stdout)
	if env.fb.Password("alice") != "pw456" {
		t.Error("expected password to change")
	}
}

func TestPasswdCommand_Failures(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  string
		calls int
	}{
		{"mismatch", []string{"--old", "pw123", "--new", "a1", "--confirm", "b2"}, "error: Passwords do not match.\n", 0},
		{"missing", []string{"--old", "pw123"}, "error: All password fields are required.\n", 0},
		{"wrong old", []string{"--old", "bad", "--new", "a1", "--confirm", "a1"}, "error: Old password error: Wrong password.\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login()

			_, stderr, code := env.run(&commands.PasswdCmd{}, tt.args...)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := env.fb.Calls(testutil.RoutePassword); n != tt.calls {
				t.Errorf("expected %d password calls, got %d", tt.calls, n)
			}
			if env.fb.Password("alice") != "pw123" {
				t.Error("expected password to stay")
			}
		})
	}
}

func TestResetPasswordCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := env.run(&commands.ResetPasswordCmd{}, "--email", "alice@example.com")
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "If an account with that email exists, a password reset link has been sent.\n", stdout)

	stdout, _, code = env.run(&commands.ResetPasswordCmd{}, "--uid", "alice", "--token", "reset-alice", "--new", "fresh1")
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "Password has been reset successfully.\n", stdout)
	if env.fb.Password("alice") != "fresh1" {
		t.Error("expected password to be reset")
	}
}

func TestResetPasswordCommand_Failures(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run(&commands.ResetPasswordCmd{}, "--uid", "alice", "--token", "forged", "--new", "fresh1")
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: The reset link is invalid or has expired.\n", stderr)

	_, stderr, code = env.run(&commands.ResetPasswordCmd{}, "--uid", "alice")
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: use either --email, or --uid with --token and --new\n", stderr)
}
