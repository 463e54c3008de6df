package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanban/internal/apiclient"
	"kanban/internal/clientconfig"
	"kanban/internal/commands"
	"kanban/internal/domain"
	"kanban/internal/exitcode"
	"kanban/internal/session"
	"kanban/internal/testutil"
)

// newConfig returns a config in a temp dir, logged in as username when it
// is not empty.
func newConfig(t *testing.T, username string) *clientconfig.Config {
	t.Helper()

	cfg := &clientconfig.Config{Dir: t.TempDir(), ServerURL: "http://kanban.test"}
	if username != "" {
		sess := &session.Session{Token: testutil.Token(username), Username: username}
		if err := session.NewFileStore(cfg.SessionPath()).Save(sess); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}
	return cfg
}

func runCommand(t *testing.T, cmd commands.Command, cfg *clientconfig.Config, api commands.API, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, api, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func newFake() *testutil.FakeAPI {
	api := testutil.NewFakeAPI()
	api.AddUser("alice", "secret")
	api.AddUser("bob", "hunter2")
	return api
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newConfig(t, ""), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "kanban 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, newConfig(t, ""), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Usage:", "kanban move <ref>", "--server <url>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestBoardCommand(t *testing.T) {
	api := newFake()
	api.AddTask("buy milk", domain.StatusTodo, "alice")
	api.AddTask("write report", domain.StatusInProgress, "alice")
	api.AddTask("file taxes", domain.StatusDone, "alice", "bob")
	api.AddTask("call mom", domain.StatusTodo, "alice")
	api.AddTask("bob's secret", domain.StatusTodo, "bob")

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, newConfig(t, "alice"), api)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	testutil.Golden(t, "board", []byte(stdout))
}

func TestBoardCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.BoardCmd{}, newConfig(t, "bob"), newFake())

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Logged in as: bob\n", "To-Do (0)\n", "In Progress (0)\n", "Done (0)\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestBoardCommand_RejectedTokenLogsOut(t *testing.T) {
	cfg := newConfig(t, "")
	sess := &session.Session{Token: "bogus", Username: "alice"}
	if err := session.NewFileStore(cfg.SessionPath()).Save(sess); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCommand(t, &commands.BoardCmd{}, cfg, newFake())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: kanban login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if cfg.HasSession() {
		t.Error("session should be cleared")
	}
}

func TestBoardCommand_NetworkErrorKeepsSession(t *testing.T) {
	api := newFake()
	api.ListErr = errors.New("connection refused")
	cfg := newConfig(t, "alice")

	_, stderr, code := runCommand(t, &commands.BoardCmd{}, cfg, api)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if !cfg.HasSession() {
		t.Error("session should survive a network error")
	}
}

func TestAddCommand(t *testing.T) {
	api := newFake()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, "alice"), api, "buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok task01\n" {
		t.Errorf("expected %q, got %q", "ok task01\n", stdout)
	}

	tasks := api.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Text != "buy milk" || tasks[0].Status != domain.StatusTodo {
		t.Errorf("unexpected task %+v", tasks[0])
	}
	if len(tasks[0].Owners) != 1 || tasks[0].Owners[0] != "alice" {
		t.Errorf("expected owners [alice], got %v", tasks[0].Owners)
	}
}

func TestAddCommand_Empty(t *testing.T) {
	api := newFake()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, "alice"), api, "   ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Task cannot be empty.\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(api.Tasks()) != 0 {
		t.Error("no task should be created")
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	cfg := newConfig(t, "alice")
	cfg.Quiet = true

	stdout, _, code := runCommand(t, &commands.AddCmd{}, cfg, newFake(), "buy milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	api := newFake()
	api.CreateErr = &apiclient.APIError{StatusCode: http.StatusInternalServerError, Message: "internal error"}
	cfg := newConfig(t, "alice")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, cfg, api, "buy milk")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: internal error\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if !cfg.HasSession() {
		t.Error("a server error should not end the session")
	}
}

func TestMoveCommand(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"by number", "2"},
		{"by id", "task02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFake()
			api.AddTask("buy milk", domain.StatusTodo, "alice")
			api.AddTask("call mom", domain.StatusTodo, "alice")

			stdout, stderr, code := runCommand(t, &commands.MoveCmd{}, newConfig(t, "alice"), api, tt.ref, "done")

			if code != exitcode.Success {
				t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
			}
			if stdout != "ok\n" {
				t.Errorf("expected ok, got %q", stdout)
			}
			tasks := api.Tasks()
			if tasks[0].Status != domain.StatusTodo {
				t.Errorf("task01 should stay in todo, got %s", tasks[0].Status)
			}
			if tasks[1].Status != domain.StatusDone {
				t.Errorf("task02 should be done, got %s", tasks[1].Status)
			}
		})
	}
}

func TestMoveCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"missing status", []string{"1"}, "error: usage: kanban move <ref> <todo|inProgress|done>\n"},
		{"bad status", []string{"1", "later"}, "error: status must be one of: todo, inProgress, done\n"},
		{"unknown card", []string{"9", "done"}, "error: card not found: 9\n"},
		{"ambiguous prefix", []string{"task", "done"}, "error: ambiguous card reference: task\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFake()
			api.AddTask("buy milk", domain.StatusTodo, "alice")
			api.AddTask("call mom", domain.StatusTodo, "alice")

			_, stderr, code := runCommand(t, &commands.MoveCmd{}, newConfig(t, "alice"), api, tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, stderr)
			}
		})
	}
}

func TestRmCommand(t *testing.T) {
	api := newFake()
	api.AddTask("buy milk", domain.StatusTodo, "alice")
	api.AddTask("file taxes", domain.StatusDone, "alice")

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, newConfig(t, "alice"), api, "2")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	tasks := api.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "buy milk" {
		t.Errorf("expected only buy milk to remain, got %+v", tasks)
	}
}

func TestShareCommand(t *testing.T) {
	api := newFake()
	api.AddTask("buy milk", domain.StatusTodo, "alice")

	stdout, stderr, code := runCommand(t, &commands.ShareCmd{}, newConfig(t, "alice"), api, "1", "bob")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "Task shared\n" {
		t.Errorf("expected %q, got %q", "Task shared\n", stdout)
	}

	stdout, _, code = runCommand(t, &commands.BoardCmd{}, newConfig(t, "bob"), api)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "   1  buy milk\n") {
		t.Errorf("bob should see the shared card:\n%s", stdout)
	}

	_, stderr, code = runCommand(t, &commands.ShareCmd{}, newConfig(t, "alice"), api, "1", "bob")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Task already shared with this user\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShareCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		shareErr error
		target   string
		expected string
	}{
		{"unknown user", nil, "carol", "error: User not found\n"},
		{
			"not owner",
			&apiclient.APIError{StatusCode: http.StatusForbidden, Message: "Not an owner of this task"},
			"bob",
			"error: Not an owner of this task\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFake()
			api.AddTask("buy milk", domain.StatusTodo, "alice")
			api.ShareErr = tt.shareErr
			cfg := newConfig(t, "alice")

			_, stderr, code := runCommand(t, &commands.ShareCmd{}, cfg, api, "1", tt.target)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, stderr)
			}
			if !cfg.HasSession() {
				t.Error("session should be kept")
			}
		})
	}
}

func TestWatchCommand(t *testing.T) {
	api := newFake()
	id := api.AddTask("buy milk", domain.StatusTodo, "alice")
	api.Events = []domain.TaskEvent{
		{Type: domain.EventTaskUpdated, TaskID: id},
		{Type: domain.EventTaskShared, TaskID: id},
	}

	stdout, stderr, code := runCommand(t, &commands.WatchCmd{}, newConfig(t, "alice"), api)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if got := strings.Count(stdout, "Logged in as: alice\n"); got != 3 {
		t.Errorf("expected the board rendered 3 times, got %d:\n%s", got, stdout)
	}
	expected := "task_updated " + id + "\ntask_shared " + id + "\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestSignupCommand(t *testing.T) {
	api := newFake()
	cfg := newConfig(t, "")

	cfg.Stdin = strings.NewReader("pw\n")

	stdout, stderr, code := runCommand(t, &commands.SignupCmd{}, cfg, api, "carol")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "Signup successful\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "Password: " {
		t.Errorf("expected password prompt, got %q", stderr)
	}
	if cfg.HasSession() {
		t.Error("signup should not log in")
	}

	cfg.Stdin = strings.NewReader("pw\n")
	_, stderr, code = runCommand(t, &commands.SignupCmd{}, cfg, api, "carol")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasSuffix(stderr, "error: Username already exists\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginLogout(t *testing.T) {
	api := newFake()
	cfg := newConfig(t, "")
	cfg.Stdin = strings.NewReader("secret\n")

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, cfg, api, "alice")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "Logged in as: alice\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	sess, err := session.NewFileStore(cfg.SessionPath()).Load()
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.Token != testutil.Token("alice") || sess.Username != "alice" || sess.Server != "http://kanban.test" {
		t.Errorf("unexpected session %+v", sess)
	}

	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, cfg, api)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("logout: code %d, stdout %q", code, stdout)
	}
	if cfg.HasSession() {
		t.Error("session file should be removed")
	}

	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, cfg, api)
	if code != exitcode.Success || stdout != "not logged in\n" {
		t.Errorf("second logout: code %d, stdout %q", code, stdout)
	}
}

func TestLoginCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		expected string
	}{
		{"no username", nil, "", "error: username required\n"},
		{"two usernames", []string{"alice", "bob"}, "", "error: username required\n"},
		{"empty password", []string{"alice"}, "\n", "Password: error: password required\n"},
		{"wrong password", []string{"alice"}, "nope\n", "Password: error: Invalid credentials\n"},
		{"unknown user", []string{"mallory"}, "x\n", "Password: error: Invalid credentials\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(t, "")
			cfg.Stdin = strings.NewReader(tt.stdin)

			_, stderr, code := runCommand(t, &commands.LoginCmd{}, cfg, newFake(), tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, stderr)
			}
			if cfg.HasSession() {
				t.Error("no session should be stored")
			}
		})
	}
}

func TestGoogleLoginCommand_NoOAuthClient(t *testing.T) {
	cfg := newConfig(t, "")

	_, stderr, code := runCommand(t, &commands.GoogleLoginCmd{}, cfg, newFake())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "oauth_client.json not found") {
		t.Errorf("expected missing client message, got %q", stderr)
	}
	if !strings.Contains(stderr, filepath.Join(cfg.Dir, clientconfig.OAuthClientFile)) {
		t.Errorf("expected path hint, got %q", stderr)
	}
}

func TestGoogleLoginCommand_InvalidClientFile(t *testing.T) {
	cfg := newConfig(t, "")
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCommand(t, &commands.GoogleLoginCmd{}, cfg, newFake())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid oauth_client.json") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
