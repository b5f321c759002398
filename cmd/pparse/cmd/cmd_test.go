//nolint:testpackage // using package name 'cmd' to access unexported fields for testing
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := Execute(context.Background(), append([]string{"--no-color"}, args...), &out, &errb)
	return code, out.String(), errb.String()
}

func TestTokensText(t *testing.T) {
	code, out, errb := run(t, "tokens", "--", "commit", "-m", `"hi there"`, "0x1F")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, errb)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 token lines, got %d:\n%s", len(lines), out)
	}
	checks := []struct {
		line int
		want []string
	}{
		{0, []string{"1:1", "[0,6)", "identifier", "commit"}},
		{1, []string{"short flag", "-m"}},
		{2, []string{"string literal", `"hi there"`}},
		{3, []string{"integer literal", "0x1f"}},
		{4, []string{"<EOF>"}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("Expected line %d to contain %q, got %q", c.line, want, lines[c.line])
			}
		}
	}
}

func TestTokensJSON(t *testing.T) {
	code, out, _ := run(t, "tokens", "--format", "json", "--", "--all", "=", "x")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var toks []tokenView
	if err := json.Unmarshal([]byte(out), &toks); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if len(toks) != 4 || toks[0].Kind != "long flag" || toks[1].Kind != "'='" || toks[2].Start != 8 {
		t.Errorf("Unexpected tokens: %+v", toks)
	}
}

func TestTokensLexError(t *testing.T) {
	code, _, errb := run(t, "tokens", "--", `"open`)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(errb, "Error: ") {
		t.Errorf("Expected error on stderr, got %q", errb)
	}
}

func TestParseSuccess(t *testing.T) {
	code, out, errb := run(t, "parse", "--grammar", "testdata/git.yaml", "--", "ci", "-m", "Initial commit", "--no-verify")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, errb)
	}
	for _, want := range []string{
		"status: success",
		"command: git commit",
		"  message = Initial commit",
		"  verify = true",
		"  no_verify = true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestParseYAMLAndEnv(t *testing.T) {
	t.Setenv("PPARSE_TEST_REMOTE", "upstream")
	code, out, _ := run(t, "parse", "-g", "testdata/git.yaml", "-o", "yaml", "--", "push", "main", "dev")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var view struct {
		Status   string         `yaml:"status"`
		Keywords map[string]any `yaml:"keywords"`
	}
	if err := yaml.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("Invalid YAML: %v\n%s", err, out)
	}
	if view.Keywords["remote"] != "upstream" {
		t.Errorf("Expected remote from env, got %v", view.Keywords["remote"])
	}
	refs, _ := view.Keywords["refs"].([]any)
	if len(refs) != 2 {
		t.Errorf("Expected two refs, got %v", view.Keywords["refs"])
	}
}

func TestParseErrorExitCode(t *testing.T) {
	code, out, errb := run(t, "parse", "--grammar", "testdata/git.yaml", "--", "commit")
	if code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	if out != "" {
		t.Errorf("Expected empty stdout in text mode, got %q", out)
	}
	if !strings.HasPrefix(errb, "Error: missing required option: -m, --message <value>") {
		t.Errorf("Unexpected stderr:\n%s", errb)
	}
	if !strings.Contains(errb, "Usage: git commit [options]") {
		t.Errorf("Expected commit help after the error, got:\n%s", errb)
	}
}

func TestParseErrorJSON(t *testing.T) {
	code, out, _ := run(t, "parse", "--grammar", "testdata/git.yaml", "--format", "json", "--", "--bogus")
	if code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	var view resultView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if view.Status != "parse_error" || view.Error == nil || view.Error.Type != "unknown_flag" {
		t.Errorf("Unexpected result: %+v", view)
	}
}

func TestParseHelp(t *testing.T) {
	code, out, _ := run(t, "parse", "--grammar", "testdata/git.yaml", "--", "push", "--help")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(out, "Usage: git push [options] [refs...]") {
		t.Errorf("Expected push help, got:\n%s", out)
	}
}

func TestParseRequiresGrammar(t *testing.T) {
	if code, _, errb := run(t, "parse", "--", "x"); code != 1 || !strings.Contains(errb, "grammar") {
		t.Errorf("Expected missing --grammar error, got %d %q", code, errb)
	}
}

func TestCheck(t *testing.T) {
	code, out, errb := run(t, "check", "--grammar", "testdata/git.yaml")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, errb)
	}
	for _, want := range []string{"Usage: git [options] <command>", "Usage: git commit [options]", "Usage: git push [options]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
	if !strings.Contains(errb, "[OK] testdata/git.yaml: 3 commands") {
		t.Errorf("Expected success line, got %q", errb)
	}
}

func TestCheckInvalidGrammar(t *testing.T) {
	code, _, errb := run(t, "check", "--grammar", "testdata/bad.toml")
	if code != 1 || !strings.Contains(errb, `unknown kind "counter"`) {
		t.Errorf("Expected invalid grammar error, got %d %q", code, errb)
	}
}

func TestCheckDump(t *testing.T) {
	code, out, _ := run(t, "check", "--grammar", "testdata/git.yaml", "--dump", "toml")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, `name = "git"`) || !strings.Contains(out, "[[commands]]") {
		t.Errorf("Expected TOML grammar, got:\n%s", out)
	}
}

func TestDemo(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		out  string
		err  string
	}{
		{"commit alias", []string{"ci", "-m", "Initial commit", "--no-verify"}, 0, "commit: \"Initial commit\" (hooks: false)\n", ""},
		{"add all", []string{"add", "-A", "README.md"}, 0, "add: (all) README.md\n", ""},
		{"remote add", []string{"remote", "add", "origin", "https://example.com/r.git"}, 0, "remote origin -> https://example.com/r.git\n", ""},
		{"remote rm", []string{"remote", "rm", "origin"}, 0, "removed remote origin\n", ""},
		{"invalid url", []string{"remote", "add", "origin", "example"}, 3, "", "validation failed"},
		{"missing message", []string{"commit"}, 1, "", "missing required option"},
		{"root help", []string{"--", "--help"}, 0, "Usage: git [options] <command>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errb := run(t, append([]string{"demo"}, tt.args...)...)
			if code != tt.code {
				t.Fatalf("Expected exit code %d, got %d (stderr: %s)", tt.code, code, errb)
			}
			if !strings.HasPrefix(out, tt.out) {
				t.Errorf("Expected stdout to start with %q, got %q", tt.out, out)
			}
			if !strings.Contains(errb, tt.err) {
				t.Errorf("Expected %q in stderr, got %q", tt.err, errb)
			}
		})
	}
}

func TestVerboseLogsHandlers(t *testing.T) {
	code, _, errb := run(t, "--verbose", "--log-format", "json", "demo", "status")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(errb, `"command":"git status"`) {
		t.Errorf("Expected JSON handler log, got %q", errb)
	}
}

func TestEnvConfiguration(t *testing.T) {
	t.Setenv("PPARSE_LOG_FORMAT", "xml")
	if code, _, errb := run(t, "demo", "status"); code != 1 || !strings.Contains(errb, "xml") {
		t.Errorf("Expected bad PPARSE_LOG_FORMAT to fail, got %d %q", code, errb)
	}

	t.Setenv("PPARSE_LOG_FORMAT", "")
	t.Setenv("PPARSE_LOG_STYLE", "plain")
	code, _, errb := run(t, "check", "--grammar", "testdata/git.yaml")
	if code != 0 || !strings.HasPrefix(errb, "testdata/git.yaml: 3 commands") {
		t.Errorf("Expected plain success line, got %d %q", code, errb)
	}
}

func TestTimeoutFlag(t *testing.T) {
	code, out, _ := run(t, "--timeout", "1m", "demo", "st", "-s")
	if code != 0 || out == "" {
		t.Errorf("Expected status output within the timeout, got %d %q", code, out)
	}

	code, _, errb := run(t, "--timeout", "soon", "demo", "status")
	if code != 1 || !strings.Contains(errb, "timeout") {
		t.Errorf("Expected invalid duration to fail, got %d %q", code, errb)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(b.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %q, got %q", want, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCheckWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte("name: app\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out, errb syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- Execute(ctx, []string{"--no-color", "check", "--watch", "-g", path}, &out, &errb)
	}()

	waitFor(t, &errb, "watching")
	if !strings.Contains(errb.String(), "1 commands") {
		t.Errorf("Expected initial check, got %q", errb.String())
	}

	grammar := "name: app\ncommands:\n  - name: sub\n    help: A subcommand\n"
	if err := os.WriteFile(path, []byte(grammar), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &errb, "2 commands")
	if !strings.Contains(out.String(), "A subcommand") {
		t.Errorf("Expected help of the new command, got %q", out.String())
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("Expected exit code 0, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected watch to stop after cancel")
	}
}
