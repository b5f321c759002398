package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dzonerzy/go-pparse/grammar"
	"github.com/dzonerzy/go-pparse/snap"
)

func newParseCmd(opts *options) *cobra.Command {
	var (
		grammarPath string
		format      string
	)
	cmd := &cobra.Command{
		Use:   "parse --grammar FILE [--format text|json|yaml] -- [args...]",
		Short: "Parse arguments against a grammar file",
		Long: `Load a grammar, run the application it describes on the arguments after
"--" and print the bound values. Help and parse errors are printed the way
the application would print them, and pparse exits with its exit code.`,
		Example: `  pparse parse --grammar git.yaml -- commit -m "Initial commit"
  pparse parse --grammar git.toml --format json -- remote add origin url`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			app, err := opts.loadApp(grammarPath)
			if err != nil {
				return err
			}
			res, code := app.RunResult(cmd.Context(), args)
			if res != nil && (res.Status == snap.StatusSuccess || format != formatText) {
				view := newResultView(res, code)
				err := render(opts.io.Out(), format, view, func(w io.Writer) error {
					return writeResultText(w, view)
				})
				if err != nil {
					return err
				}
			}
			if code != 0 {
				return &snap.ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "Grammar file (.yaml, .yml, .toml or .json)")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("grammar")
	return cmd
}

// loadApp loads and builds the grammar at path with pparse's streams,
// colour setting and handler middleware.
func (o *options) loadApp(path string, build ...grammar.BuildOption) (*snap.App, error) {
	g, err := grammar.Load(path)
	if err != nil {
		return nil, err
	}
	o.console.Debug("loaded grammar %q from %s", g.Name, path)
	return o.buildApp(g, build...)
}

func (o *options) buildApp(g *grammar.Command, build ...grammar.BuildOption) (*snap.App, error) {
	mw, err := o.handlerMiddleware()
	if err != nil {
		return nil, err
	}
	app, err := grammar.Build(g, append([]grammar.BuildOption{grammar.WithMiddleware(mw...)}, build...)...)
	if err != nil {
		return nil, err
	}
	o.bindIO(app)
	return app, nil
}

func (o *options) bindIO(app *snap.App) {
	app.IO().WithOut(o.io.Out()).WithErr(o.io.Err())
	if o.noColor {
		app.IO().NoColor()
	}
}
