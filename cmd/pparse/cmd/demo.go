package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dzonerzy/go-pparse/middleware"
	"github.com/dzonerzy/go-pparse/snap"
)

func newDemoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [args...]",
		Short: "Run a built-in git-like application",
		Long: `Run a small git-like application built with the fluent API. Everything
from the first argument on is handed to it unchanged; put "--" first to
pass options to the demo's root command, e.g. "pparse demo -- --help".`,
		Example: `  pparse demo ci -m "Initial commit" --no-verify
  pparse demo remote add origin https://example.com/repo.git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mw, err := opts.handlerMiddleware()
			if err != nil {
				return err
			}
			app := newDemoApp(opts.io.Out())
			app.Use(mw...)
			opts.bindIO(app)
			if code := app.Run(cmd.Context(), args); code != 0 {
				return &snap.ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// newDemoApp builds the demo tree. Handlers report what they would do on w.
func newDemoApp(w io.Writer) *snap.App {
	app := snap.New("git", "A tiny version control front end")
	app.Flag("verbose", "Verbose output").Short("v").Long("verbose")

	app.Command("add", "Add file contents to the index").
		Flag("all", "Add changes from all tracked and untracked files").Short("A").Long("all").Back().
		Args("paths", "Files to add").Optional().Back().
		Handler(func(res *snap.ParseResult) int {
			paths, _ := res.Strings("paths")
			if res.Enabled("all") {
				paths = append([]string{"(all)"}, paths...)
			}
			fmt.Fprintf(w, "add: %s\n", strings.Join(paths, " "))
			return 0
		})

	app.Command("commit", "Record changes to the repository").
		Alias("ci").
		Option("message", "Commit message").Short("m").Long("message").Required().Back().
		Flag("amend", "Amend the previous commit").Long("amend").Back().
		Flag("verify", "Run commit hooks").Long("verify").Default(snap.BoolValue(true)).Back().
		Handler(func(res *snap.ParseResult) int {
			msg, _ := res.String("message")
			verb := "commit"
			if res.Enabled("amend") {
				verb = "amend"
			}
			fmt.Fprintf(w, "%s: %q (hooks: %t)\n", verb, msg, res.Enabled("verify"))
			return 0
		})

	app.Command("status", "Show the working tree status").
		Alias("st").
		Flag("short", "Give the output in the short format").Short("s").Long("short").Back().
		Handler(func(res *snap.ParseResult) int {
			if res.Enabled("short") {
				fmt.Fprintln(w, "## main")
			} else {
				fmt.Fprintln(w, "On branch main\nnothing to commit, working tree clean")
			}
			return 0
		})

	remote := app.Command("remote", "Manage tracked repositories")
	remote.Command("add", "Add a remote").
		Arg("name", "Remote name").Back().
		Arg("url", "Remote URL").Back().
		Use(middleware.Validate(middleware.Custom("url", validURL))).
		Handler(func(res *snap.ParseResult) int {
			name, _ := res.String("name")
			url, _ := res.String("url")
			fmt.Fprintf(w, "remote %s -> %s\n", name, url)
			return 0
		})
	remote.Command("remove", "Remove a remote").
		Alias("rm").
		Arg("name", "Remote name").Back().
		Handler(func(res *snap.ParseResult) int {
			name, _ := res.String("name")
			fmt.Fprintf(w, "removed remote %s\n", name)
			return 0
		})

	return app
}

func validURL(res middleware.Result) error {
	url, _ := res.String("url")
	for _, scheme := range []string{"https://", "http://", "ssh://", "git@", "file://"} {
		if strings.HasPrefix(url, scheme) {
			return nil
		}
	}
	return errors.New("url must start with https://, http://, ssh://, git@ or file://")
}
