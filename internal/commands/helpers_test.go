package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"testing"

	"prodexa/internal/commands"
	"prodexa/internal/config"
	"prodexa/internal/output"
	"prodexa/internal/service"
	"prodexa/internal/testutil"
	"prodexa/internal/tokenstore"
)

// testEnv is one user's machine: a config dir and a session storage that
// outlive single command runs, talking to a fake backend.
type testEnv struct {
	t       *testing.T
	fb      *testutil.FakeBackend
	dir     string
	storage *tokenstore.MemoryStorage
	opts    []service.Option
	ctx     context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:       t,
		fb:      testutil.NewFakeBackend(t),
		dir:     t.TempDir(),
		storage: tokenstore.NewMemoryStorage(),
		ctx:     context.Background(),
	}
}

// login stores a valid session for alice without running the login command.
func (e *testEnv) login() {
	e.t.Helper()
	access, refresh := e.fb.IssueTokens("alice")
	store := tokenstore.New(e.storage, nil)
	if err := store.SetTokens(access, refresh); err != nil {
		e.t.Fatalf("store tokens: %v", err)
	}
	if err := store.SetProfile("alice", "alice@example.com"); err != nil {
		e.t.Fatalf("store profile: %v", err)
	}
}

// guest stores a guest session.
func (e *testEnv) guest() {
	e.t.Helper()
	if err := tokenstore.New(e.storage, nil).SetGuest(); err != nil {
		e.t.Fatalf("store guest: %v", err)
	}
}

func (e *testEnv) session() tokenstore.Snapshot {
	return tokenstore.New(e.storage, nil).Read()
}

func (e *testEnv) config(quiet bool) *config.Config {
	e.t.Helper()
	cfg, err := config.New(e.dir)
	if err != nil {
		e.t.Fatalf("config: %v", err)
	}
	cfg.Quiet = quiet
	cfg.Settings.API.BaseURL = e.fb.URL()
	return cfg
}

// run parses args with the command's flags and runs it the way the
// dispatcher does, with a fresh service per run.
func (e *testEnv) run(cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	return e.runWith(e.config(false), cmd, args...)
}

func (e *testEnv) runQuiet(cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	return e.runWith(e.config(true), cmd, args...)
}

func (e *testEnv) runWith(cfg *config.Config, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	e.t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		e.t.Fatalf("parse flags %v: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	notices := io.Writer(&outBuf)
	if cfg.Quiet {
		notices = io.Discard
	}

	opts := append([]service.Option{
		service.WithStorage(e.storage),
		service.WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}}),
		service.WithNotifier(output.Notifier(notices)),
	}, e.opts...)
	svc, err := service.New(e.ctx, cfg, opts...)
	if err != nil {
		e.t.Fatalf("service: %v", err)
	}
	defer svc.Close()

	if cmd.NeedsAuth() {
		svc.Session.Init(e.ctx)
	}
	code = cmd.Run(e.ctx, cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectCode(t *testing.T, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

func expectOutput(t *testing.T, name, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("expected %s %q, got %q", name, want, got)
	}
}
