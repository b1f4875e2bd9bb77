package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/todo-sync/internal/backend/handlers"
	"github.com/idilsaglam/todo-sync/internal/backend/store"
)

type result struct {
	code   int
	out    string
	errOut string
}

func newBackend(t *testing.T, opts ...handlers.Option) *httptest.Server {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "todos.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	srv := httptest.NewServer(handlers.New(s, opts...).Router())
	t.Cleanup(srv.Close)
	return srv
}

// env points the client at baseURL with an empty home directory.
func env(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TODO_BASE_URL", baseURL)
	t.Setenv("TODO_TOKEN", "")
	t.Setenv("TODO_SHOW_COMPLETED", "")
	t.Setenv("TODO_THEME", "classic")
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, out: out.String(), errOut: errOut.String()}
}

func mustRun(t *testing.T, args ...string) result {
	t.Helper()
	r := runCLI(t, "", args...)
	if r.code != 0 {
		t.Fatalf("todo %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), r.code, r.out, r.errOut)
	}
	return r
}

func TestUsageErrors(t *testing.T) {
	env(t, newBackend(t).URL)

	tests := []struct {
		name string
		args []string
	}{
		{"no subcommand", nil},
		{"unknown subcommand", []string{"bogus"}},
		{"add without name", []string{"add"}},
		{"done not a number", []string{"done", "abc"}},
		{"rm too many args", []string{"rm", "1", "2"}},
		{"unknown flag", []string{"ls", "--nope"}},
		{"blank name", []string{"add", "  "}},
		{"bad due date", []string{"add", "x", "--due", "tomorrow"}},
		{"completed-on without done", []string{"add", "x", "--completed-on", "2024-01-01"}},
		{"edit without changes", []string{"edit", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			if r.code != 2 {
				t.Errorf("exit = %d, want 2 (stderr: %s)", r.code, r.errOut)
			}
		})
	}
}

func TestAddListComplete(t *testing.T) {
	env(t, newBackend(t).URL)

	r := mustRun(t, "add", "Buy", "milk", "--due", "2024-01-31")
	if !strings.Contains(r.out, "added #1 Buy milk") {
		t.Errorf("add output = %q", r.out)
	}
	mustRun(t, "add", "Old", "task", "--due", "2024-01-01", "--done", "--completed-on", "2024-01-02")

	r = mustRun(t, "ls", "--plain")
	if !strings.Contains(r.out, "Buy milk") || strings.Contains(r.out, "Old task") {
		t.Errorf("open list = %q", r.out)
	}

	r = mustRun(t, "ls", "--plain", "--all", "--group")
	for _, want := range []string{"Pending", "Done", "Buy milk", "Old task", "done 2024-01-02"} {
		if !strings.Contains(r.out, want) {
			t.Errorf("grouped list missing %q:\n%s", want, r.out)
		}
	}

	r = mustRun(t, "done", "1")
	if !strings.Contains(r.out, "completed #1") {
		t.Errorf("done output = %q", r.out)
	}
	r = mustRun(t, "ls", "--plain")
	if strings.Contains(r.out, "Buy milk") {
		t.Errorf("completed todo still listed as open:\n%s", r.out)
	}
}

func TestEdit(t *testing.T) {
	env(t, newBackend(t).URL)
	mustRun(t, "add", "Walk", "--due", "2024-01-20")

	r := mustRun(t, "edit", "1", "--name", "  Walk the dog ", "--due", "2024-01-21")
	if !strings.Contains(r.out, "saved #1 Walk the dog") {
		t.Errorf("edit output = %q", r.out)
	}
	r = mustRun(t, "ls", "--plain")
	if !strings.Contains(r.out, "due 2024-01-21") {
		t.Errorf("list after edit = %q", r.out)
	}

	if r := runCLI(t, "", "edit", "1", "--name", " "); r.code != 2 {
		t.Errorf("blank rename exit = %d, want 2", r.code)
	}

	mustRun(t, "done", "1")
	if r := runCLI(t, "", "edit", "1", "--name", "again"); r.code != 2 {
		t.Errorf("editing a completed todo exit = %d, want 2", r.code)
	}
}

func TestRemove(t *testing.T) {
	env(t, newBackend(t).URL)
	mustRun(t, "add", "Walk")

	r := mustRun(t, "rm", "1")
	if !strings.Contains(r.out, "removed #1 Walk") {
		t.Errorf("rm output = %q", r.out)
	}

	r = runCLI(t, "", "rm", "1")
	if r.code != 1 {
		t.Fatalf("rm missing exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.errOut, "todo not found") || !strings.Contains(r.errOut, "Hint:") {
		t.Errorf("stderr = %q", r.errOut)
	}
}

func TestBackendDown(t *testing.T) {
	srv := newBackend(t)
	env(t, srv.URL)
	srv.Close()

	r := runCLI(t, "", "ls", "--plain")
	if r.code != 1 {
		t.Fatalf("exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.errOut, "list:") {
		t.Errorf("stderr = %q", r.errOut)
	}

	r = runCLI(t, "", "add", "x")
	if r.code != 1 {
		t.Fatalf("add exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.errOut, "Error creating todo") {
		t.Errorf("stderr = %q", r.errOut)
	}
}

func TestAuthFlow(t *testing.T) {
	env(t, newBackend(t, handlers.WithToken("s3cret-token")).URL)

	if r := runCLI(t, "", "ls", "--plain"); r.code != 1 {
		t.Fatalf("unauthenticated exit = %d, want 1", r.code)
	}
	if r := runCLI(t, "", "auth", "status"); r.code != 1 {
		t.Errorf("status before login exit = %d, want 1", r.code)
	}

	r := runCLI(t, "Bearer s3cret-token\n", "auth", "login")
	if r.code != 0 {
		t.Fatalf("login exit = %d: %s", r.code, r.errOut)
	}
	mustRun(t, "ls", "--plain")

	r = mustRun(t, "auth", "status")
	if !strings.Contains(r.out, "source:  file") || strings.Contains(r.out, "s3cret-token") {
		t.Errorf("status output = %q", r.out)
	}

	if r := runCLI(t, "", "auth", "whoami"); r.code != 1 {
		t.Errorf("whoami on opaque token exit = %d, want 1", r.code)
	}

	mustRun(t, "auth", "logout")
	if r := runCLI(t, "", "ls", "--plain"); r.code != 1 {
		t.Errorf("after logout exit = %d, want 1", r.code)
	}
	if r := runCLI(t, "", "auth", "login"); r.code != 2 {
		t.Errorf("empty login exit = %d, want 2", r.code)
	}
}

func TestConfigShow(t *testing.T) {
	env(t, "http://example.test:9000/")
	t.Setenv("TODO_TOKEN", "abcdefghijkl")

	r := mustRun(t, "config", "show")
	if !strings.Contains(r.out, "base_url: http://example.test:9000\n") {
		t.Errorf("config show = %q", r.out)
	}
	if strings.Contains(r.out, "abcdefghijkl") {
		t.Error("token printed in clear")
	}

	r = mustRun(t, "config", "path")
	if !strings.Contains(r.out, filepath.Join(".todo", "config.yaml")) {
		t.Errorf("config path = %q", r.out)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"short":        "*****",
		"abcdefghijkl": "abcd****ijkl",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnknownThemeFailsSetup(t *testing.T) {
	env(t, newBackend(t).URL)
	t.Setenv("TODO_THEME", "neon")

	r := runCLI(t, "", "ls", "--plain")
	if r.code != 1 {
		t.Fatalf("exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.errOut, `unknown theme "neon"`) {
		t.Errorf("stderr = %q", r.errOut)
	}

	t.Setenv("TODO_THEME", "plain")
	mustRun(t, "add", "Walk", "--due", "2024-01-20")
	r = mustRun(t, "ls", "--plain")
	if !strings.Contains(r.out, "[ ] Walk") {
		t.Errorf("plain theme output = %q", r.out)
	}
	t.Setenv("TODO_THEME", "classic")
	mustRun(t, "ls", "--plain")
}
