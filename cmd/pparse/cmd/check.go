package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dzonerzy/go-pparse/grammar"
	"github.com/dzonerzy/go-pparse/snap"
)

func newCheckCmd(opts *options) *cobra.Command {
	var (
		grammarPath string
		dump        string
		watch       bool
	)
	cmd := &cobra.Command{
		Use:   "check --grammar FILE",
		Short: "Validate a grammar file and print the help of every command",
		Example: `  pparse check --grammar git.yaml
  pparse check --grammar git.yaml --dump toml
  pparse check --grammar git.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !watch {
				return opts.check(grammarPath, dump)
			}
			return opts.watchGrammar(cmd.Context(), grammarPath, dump)
		},
	}
	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "Grammar file (.yaml, .yml, .toml or .json)")
	cmd.Flags().StringVar(&dump, "dump", "", "Re-encode the grammar as yaml, toml or json instead of printing help")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Check again every time the file changes")
	_ = cmd.MarkFlagRequired("grammar")
	return cmd
}

func (o *options) check(path, dump string) error {
	g, err := grammar.Load(path)
	if err != nil {
		return err
	}
	app, err := o.buildApp(g)
	if err != nil {
		return err
	}
	if dump != "" {
		return grammar.Encode(o.io.Out(), g, grammar.Format(dump))
	}

	n := 0
	var walk func(c *snap.Command) error
	walk = func(c *snap.Command) error {
		if n > 0 {
			fmt.Fprintln(o.io.Out())
		}
		n++
		if _, err := fmt.Fprint(o.io.Out(), c.HelpText()); err != nil {
			return err
		}
		for _, sub := range c.Subcommands() {
			if err := walk(sub); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(app.Root()); err != nil {
		return err
	}
	o.console.Success("%s: %d commands", path, n)
	return nil
}

// watchGrammar runs check on path and again after every write until ctx
// is done. Check failures are reported and do not stop the loop.
func (o *options) watchGrammar(ctx context.Context, path, dump string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace the file, so watch its directory.
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	if err := o.check(path, dump); err != nil {
		o.console.Error("%v", err)
	}
	o.console.Info("watching %s", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			o.console.Debug("%s: %s", ev.Op, ev.Name)
			if err := o.check(path, dump); err != nil {
				o.console.Error("%v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			o.console.Warning("watch: %v", err)
		}
	}
}
