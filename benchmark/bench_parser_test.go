//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	"github.com/dzonerzy/go-pparse/lexer"
	"github.com/dzonerzy/go-pparse/snap"
)

// Category: parser

func buildGitApp() *snap.App {
	app := snap.New("git", "bench")
	app.Flag("verbose", "").Short("v").Long("verbose")
	app.Flag("quiet", "").Short("q").Long("quiet")
	app.Command("commit", "").
		Alias("ci").
		Option("message", "").Short("m").Long("message").Required().Back().
		Option("author", "").Long("author").Back().
		Flag("verify", "").Long("verify").Default(snap.BoolValue(true)).Back().
		List("trailer", "").Long("trailer").Back().
		Args("paths", "").Optional()
	app.Command("push", "").
		Arg("remote", "").Default(snap.StringValue("origin")).Back().
		Option("depth", "").Long("depth").Default(snap.IntValue(1))
	return app
}

func mustTokens(b *testing.B, line string) []lexer.Token {
	b.Helper()
	toks, err := lexer.TokenizeString(line, "<bench>")
	if err != nil {
		b.Fatal(err)
	}
	return toks
}

func BenchmarkParseTokens(b *testing.B) {
	tests := []struct {
		name string
		line string
	}{
		{"flags", "-vq"},
		{"subcommand", `ci -m "Initial commit" --author=dev --no-verify`},
		{"lists", "commit -m x --trailer a b c --trailer d"},
		{"positional default", "push --depth 0x10"},
	}

	root := buildGitApp().Root()
	for _, tt := range tests {
		toks := mustTokens(b, tt.line)
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if res := root.Parse(toks); res.Status == snap.StatusParseError {
					b.Fatal(res.Err)
				}
			}
		})
	}
}

func BenchmarkParseLine(b *testing.B) {
	app := buildGitApp()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := app.ParseLine(`commit -m "Initial commit" README.md main.go`); !res.OK() {
			b.Fatal(res.Err)
		}
	}
}

func BenchmarkParseArgv(b *testing.B) {
	app := buildGitApp()
	args := []string{"commit", "-m", "Initial commit", "--author=Jane Doe", "MY.DATA(MEMBER)"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := app.Parse(args); !res.OK() {
			b.Fatal(res.Err)
		}
	}
}

func BenchmarkParseHelp(b *testing.B) {
	root := buildGitApp().Root()
	toks := mustTokens(b, "commit --bogus -h")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := root.Parse(toks); res.Status != snap.StatusHelpRequested {
			b.Fatalf("expected help, got %s", res.Status)
		}
	}
}

func BenchmarkParseError(b *testing.B) {
	root := buildGitApp().Root()
	toks := mustTokens(b, "commit --mesage x")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := root.Parse(toks); res.Status != snap.StatusParseError {
			b.Fatal("expected error")
		}
	}
}

func BenchmarkHelpText(b *testing.B) {
	cmd := buildGitApp().Root().Subcommand("commit")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if cmd.HelpText() == "" {
			b.Fatal("empty help")
		}
	}
}
