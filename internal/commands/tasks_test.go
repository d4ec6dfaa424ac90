package commands_test

import (
	"strings"
	"testing"

	"prodexa/internal/commands"
	"prodexa/internal/exitcode"
	"prodexa/internal/testutil"
)

func TestTasksCommand_ListsTasks(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 3)
	env.fb.AddTask("Buy milk", "DONE", 1)

	stdout, stderr, code := env.run(&commands.TasksCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expected := "   1  [ ] Write report  (high)\n" +
		"   2  [x] Buy milk  (low)\n" +
		"page 1/1, 2 tasks\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestTasksCommand_Quiet(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 3)

	stdout, _, code := env.runQuiet(&commands.TasksCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "   1  [ ] Write report  (high)\n", stdout)
}

func TestTasksCommand_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 3)
	env.fb.AddTask("Buy milk", "DONE", 1)
	env.fb.AddTask("Report expenses", "PENDING", 1)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"status", []string{"--status", "done"}, []string{"Buy milk"}},
		{"search", []string{"--search", "report"}, []string{"Write report", "Report expenses"}},
		{"priority", []string{"--priority", "low"}, []string{"Buy milk", "Report expenses"}},
		{"combined", []string{"--status", "pending", "--priority", "1"}, []string{"Report expenses"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := env.runQuiet(&commands.TasksCmd{}, tt.args...)

			expectCode(t, exitcode.Success, code)
			lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %q", len(tt.want), stdout)
			}
			for i, title := range tt.want {
				if !strings.Contains(lines[i], title) {
					t.Errorf("line %d: expected %q, got %q", i, title, lines[i])
				}
			}
		})
	}
}

func TestTasksCommand_DateRange(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	early := env.fb.AddTask("Early", "PENDING", 2)
	late := env.fb.AddTask("Late", "PENDING", 2)
	env.fb.SetTaskDue(early, "2026-03-01")
	env.fb.SetTaskDue(late, "2026-03-20")

	stdout, _, code := env.runQuiet(&commands.TasksCmd{}, "--from", "2026-03-10", "--to", "2026-03-31")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "   2  [ ] Late  (due 2026-03-20, medium)\n", stdout)
}

func TestTasksCommand_Pages(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.PageSize = 2
	for _, title := range []string{"One", "Two", "Three"} {
		env.fb.AddTask(title, "PENDING", 2)
	}

	stdout, _, code := env.run(&commands.TasksCmd{}, "--page", "2")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "   3  [ ] Three  (medium)\npage 2/2, 3 tasks\n", stdout)
}

func TestTasksCommand_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, _, code := env.run(&commands.TasksCmd{})
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "no tasks found\n", stdout)

	stdout, _, code = env.runQuiet(&commands.TasksCmd{})
	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
}

func TestTasksCommand_Guest(t *testing.T) {
	env := newTestEnv(t)
	env.guest()

	stdout, stderr, code := env.run(&commands.TasksCmd{})

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	for _, title := range []string{"Simulated Task A", "Simulated Task B", "Simulated Task C"} {
		if !strings.Contains(stdout, title) {
			t.Errorf("expected %q in %q", title, stdout)
		}
	}
	if !strings.HasSuffix(stdout, "page 1/1, 3 tasks\n") {
		t.Errorf("expected pagination footer, got %q", stdout)
	}
	if n := env.fb.TotalCalls(); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestTasksCommand_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run(&commands.TasksCmd{})

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stderr", "error: not logged in (run: prodexa login)\n", stderr)
}

func TestTasksCommand_BackendError(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.Fail(testutil.RouteTasksList, 500, -1)

	stdout, stderr, code := env.run(&commands.TasksCmd{})

	expectCode(t, exitcode.BackendError, code)
	expectOutput(t, "stdout", "", stdout)
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("expected error on stderr, got %q", stderr)
	}
}

func TestTasksCommand_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"status", []string{"--status", "later"}, "error: invalid status \"later\" (want pending or done)\n"},
		{"priority", []string{"--priority", "urgent"}, "error: invalid priority \"urgent\" (want low, medium, high or 1-3)\n"},
		{"date", []string{"--from", "soon"}, "error: invalid date \"soon\" (want YYYY-MM-DD)\n"},
		{"page", []string{"--page", "0"}, "error: invalid page number: 0\n"},
		{"argument", []string{"extra"}, "error: unexpected argument: extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login()

			_, stderr, code := env.run(&commands.TasksCmd{}, tt.args...)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := env.fb.Calls(testutil.RouteTasksList); n != 0 {
				t.Errorf("expected no list calls, got %d", n)
			}
		})
	}
}

func TestAddCommand_Success(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, stderr, code := env.run(&commands.AddCmd{},
		"--desc", "quarterly", "--due", "2026-03-01", "--priority", "high", "Write", "report")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Your task has been successfully added.\n", stdout)

	stored := env.fb.Tasks()
	if len(stored) != 1 {
		t.Fatalf("expected 1 task, got %d", len(stored))
	}
	got := stored[0]
	if got.Title != "Write report" || got.Description != "quarterly" || got.Priority != 3 {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || *got.DueDate != "2026-03-01" {
		t.Errorf("expected due date 2026-03-01, got %v", got.DueDate)
	}
	// the list is reloaded after the insert
	if n := env.fb.Calls(testutil.RouteTasksList); n != 1 {
		t.Errorf("expected 1 refetch, got %d", n)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	stdout, _, code := env.runQuiet(&commands.AddCmd{}, "Buy milk")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stdout", "", stdout)
	if len(env.fb.Tasks()) != 1 {
		t.Error("expected task to be created")
	}
}

func TestAddCommand_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no title", nil, "error: title required\n"},
		{"blank title", []string{"  "}, "error: title required\n"},
		{"bad due", []string{"--due", "tomorrow", "Buy milk"}, "error: invalid task: invalid date \"tomorrow\" (want YYYY-MM-DD)\n"},
		{"bad priority", []string{"--priority", "9", "Buy milk"}, "error: invalid priority \"9\" (want low, medium, high or 1-3)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login()

			_, stderr, code := env.run(&commands.AddCmd{}, tt.args...)

			expectCode(t, exitcode.UserError, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if n := env.fb.Calls(testutil.RouteTasksCreate); n != 0 {
				t.Errorf("expected no create calls, got %d", n)
			}
		})
	}
}

func TestAddCommand_Guest(t *testing.T) {
	env := newTestEnv(t)
	env.guest()

	stdout, stderr, code := env.run(&commands.AddCmd{}, "Buy milk")

	expectCode(t, exitcode.AuthError, code)
	expectOutput(t, "stdout", "", stdout)
	expectOutput(t, "stderr", "error: add task: login required (guest mode) (run: prodexa login)\n", stderr)
	if n := env.fb.TotalCalls(); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestEditCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	id := env.fb.AddTask("Draft", "PENDING", 1)
	env.fb.SetTaskDue(id, "2026-03-01")

	stdout, stderr, code := env.run(&commands.EditCmd{}, "--title", "Final", "--desc", "", "1")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Your task has been successfully updated.\n", stdout)

	got := env.fb.Tasks()[0]
	if got.Title != "Final" || got.Priority != 1 || got.Status != "PENDING" {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || *got.DueDate != "2026-03-01" {
		t.Errorf("expected due date to be kept, got %v", got.DueDate)
	}
}

func TestEditCommand_Status(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Draft", "PENDING", 2)

	_, _, code := env.runQuiet(&commands.EditCmd{}, "--status", "done", "--priority", "high", "1")

	expectCode(t, exitcode.Success, code)
	got := env.fb.Tasks()[0]
	if got.Status != "DONE" || got.Priority != 3 {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestEditCommand_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"no id", []string{"--title", "x"}, exitcode.UserError, "error: task id required\n"},
		{"nothing", []string{"1"}, exitcode.UserError, "error: nothing to change\n"},
		{"missing", []string{"--title", "x", "99"}, exitcode.UserError, "error: Not found.\n"},
		{"empty title", []string{"--title", " ", "1"}, exitcode.UserError, "error: invalid task: title is required\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login()
			env.fb.AddTask("Draft", "PENDING", 2)

			_, stderr, code := env.run(&commands.EditCmd{}, tt.args...)

			expectCode(t, tt.code, code)
			expectOutput(t, "stderr", tt.want, stderr)
			if env.fb.Tasks()[0].Title != "Draft" {
				t.Error("expected task to stay unchanged")
			}
		})
	}
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 2)

	stdout, _, code := env.run(&commands.ShowCmd{}, "1")

	expectCode(t, exitcode.Success, code)
	expected := "id:       1\n" +
		"title:    Write report\n" +
		"status:   PENDING\n" +
		"priority: medium\n"
	expectOutput(t, "stdout", expected, stdout)
}

func TestDoneCommand_Toggles(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 2)

	stdout, stderr, code := env.run(&commands.DoneCmd{}, "1")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "Task 'Write report' marked as DONE.\n", stdout)
	if got := env.fb.Tasks()[0].Status; got != "DONE" {
		t.Errorf("expected DONE, got %s", got)
	}

	stdout, _, _ = env.run(&commands.DoneCmd{}, "1")
	expectOutput(t, "stdout", "Task 'Write report' marked as PENDING.\n", stdout)
	if got := env.fb.Tasks()[0].Status; got != "PENDING" {
		t.Errorf("expected PENDING, got %s", got)
	}
}

func TestDoneCommand_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 2)

	_, stderr, code := env.run(&commands.DoneCmd{})
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: task id required\n", stderr)

	_, stderr, code = env.run(&commands.DoneCmd{}, "1", "2")
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: expected one task id, got 2 arguments\n", stderr)

	env.fb.Fail(testutil.RouteTasksPatch, 500, 1)
	_, _, code = env.run(&commands.DoneCmd{}, "1")
	expectCode(t, exitcode.BackendError, code)
	if got := env.fb.Tasks()[0].Status; got != "PENDING" {
		t.Errorf("expected PENDING after failure, got %s", got)
	}
}

func TestRmCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login()
	env.fb.AddTask("Write report", "PENDING", 2)

	stdout, stderr, code := env.run(&commands.RmCmd{}, "1")

	expectCode(t, exitcode.Success, code)
	expectOutput(t, "stderr", "", stderr)
	expectOutput(t, "stdout", "The task has been successfully deleted.\n", stdout)
	if len(env.fb.Tasks()) != 0 {
		t.Error("expected task to be deleted")
	}
}

func TestRmCommand_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	_, stderr, code := env.run(&commands.RmCmd{})
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: task id required\n", stderr)

	_, stderr, code = env.run(&commands.RmCmd{}, "7")
	expectCode(t, exitcode.UserError, code)
	expectOutput(t, "stderr", "error: Not found.\n", stderr)
}
