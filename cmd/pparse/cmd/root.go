// Package cmd implements the pparse command line: token dumps, grammar
// checks and parsing argv against grammar files.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	snapio "github.com/dzonerzy/go-pparse/io"
	"github.com/dzonerzy/go-pparse/middleware"
	"github.com/dzonerzy/go-pparse/snap"
)

// Environment variables read when the matching flag is not given.
const (
	envNoColor   = "PPARSE_NO_COLOR"
	envLogFormat = "PPARSE_LOG_FORMAT"
	envLogStyle  = "PPARSE_LOG_STYLE"
)

type options struct {
	noColor   bool
	logFormat string
	logStyle  string
	verbose   bool
	timeout   time.Duration

	io      *snapio.IOManager
	console *snapio.Console
}

// handlerMiddleware is the chain wrapped around grammar and demo handlers:
// panics become errors, --timeout bounds each run and, with --verbose,
// every run is logged.
func (o *options) handlerMiddleware() ([]middleware.Middleware, error) {
	mw := []middleware.Middleware{middleware.RecoveryToError()}
	if o.timeout > 0 {
		mw = append(mw, middleware.Timeout(o.timeout))
	}
	if !o.verbose {
		return mw, nil
	}
	format, err := middleware.ParseLogFormat(o.logFormat)
	if err != nil {
		return nil, err
	}
	logger := middleware.LoggerWithWriter(o.io.Err(),
		middleware.WithLogFormat(format),
		middleware.WithLogLevel(middleware.LogLevelDebug),
		middleware.WithRequestID(true))
	return append([]middleware.Middleware{logger}, mw...), nil
}

// newRootCmd builds the command tree bound to the given streams.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{io: snapio.New().WithOut(stdout).WithErr(stderr)}
	opts.console = snapio.NewConsole(opts.io)

	root := &cobra.Command{
		Use:   "pparse",
		Short: "Tokenize command lines and parse them against grammars",
		Long: `pparse exercises the go-pparse engine from the shell.

It prints token streams, validates grammar files written in YAML, TOML or
JSON, and parses arguments against a grammar the way an application built
on the engine would.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.configure(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output (env "+envNoColor+")")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Handler log format: text or json (env "+envLogFormat+")")
	pf.StringVar(&opts.logStyle, "log-style", "tagged", "Diagnostic prefix: tagged, symbols or plain (env "+envLogStyle+")")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Print debug diagnostics and log handler runs")
	pf.DurationVar(&opts.timeout, "timeout", 0, "Fail handlers that run longer than this (0 disables)")

	root.AddCommand(
		newTokensCmd(opts),
		newParseCmd(opts),
		newCheckCmd(opts),
		newDemoCmd(opts),
	)
	return root
}

func (o *options) configure(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !flags.Changed("no-color") {
		if v := os.Getenv(envNoColor); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", envNoColor, err)
			}
			o.noColor = b
		}
	}
	if v := os.Getenv(envLogFormat); v != "" && !flags.Changed("log-format") {
		o.logFormat = v
	}
	if v := os.Getenv(envLogStyle); v != "" && !flags.Changed("log-style") {
		o.logStyle = v
	}

	if _, err := middleware.ParseLogFormat(o.logFormat); err != nil {
		return err
	}
	prefix, err := snapio.ParsePrefix(o.logStyle)
	if err != nil {
		return err
	}
	if o.noColor {
		o.io.NoColor()
	}
	o.console.WithPrefix(prefix)
	if o.verbose {
		o.console.WithMinLevel(snapio.LevelDebug)
	}
	return nil
}

// Execute runs pparse with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var exitErr *snap.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		if exitErr.Err != nil {
			snapio.NewConsole(snapio.New().WithErr(stderr).NoColor()).Error("%v", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
