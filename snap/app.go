package snap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dzonerzy/go-pparse/lexer"
	snapio "github.com/dzonerzy/go-pparse/io"
	"github.com/dzonerzy/go-pparse/middleware"
)

// App is the driver around a root command: it tokenizes input, parses it,
// renders help and errors and maps results to exit codes.
type App struct {
	*CommandBuilder

	errs     []error
	builders []*CommandBuilder

	errorHandler *ErrorHandler
	ioManager    *snapio.IOManager
	exitCodes    *ExitCodeManager
}

// New creates an application whose root command is called name.
func New(name, description string) *App {
	a := &App{
		errorHandler: NewErrorHandler(),
		ioManager:    snapio.New(),
	}
	a.CommandBuilder = &CommandBuilder{command: NewCommand(name, description), app: a}
	a.builders = append(a.builders, a.CommandBuilder)
	return a
}

// Root returns the root command with all declarations registered.
func (a *App) Root() *Command {
	a.flushAll()
	return a.command
}

// Err returns the registration errors collected by the builders, joined.
func (a *App) Err() error {
	a.flushAll()
	return errors.Join(a.errs...)
}

func (a *App) flushAll() {
	for _, b := range a.builders {
		b.flush()
	}
}

// Use adds middleware around every handler of the application.
func (a *App) Use(mw ...middleware.Middleware) *App {
	a.CommandBuilder.Use(mw...)
	return a
}

// IO returns the application's IOManager for fluent configuration.
func (a *App) IO() *snapio.IOManager {
	if a.ioManager == nil {
		a.ioManager = snapio.New()
	}
	return a.ioManager
}

// ErrorHandler returns the handler that decorates parse errors in Run.
func (a *App) ErrorHandler() *ErrorHandler { return a.errorHandler }

// ExitCodes returns the exit-code manager for this app. Resolution
// precedence is: ExitError > CLI category (DefineCLI) > concrete error type
// (DefineError) > defaults.
func (a *App) ExitCodes() *ExitCodeManager {
	if a.exitCodes == nil {
		a.exitCodes = newExitCodeManager()
	}
	return a.exitCodes
}

// ParseLine tokenizes line and parses it from the root command.
func (a *App) ParseLine(line string) *ParseResult {
	return a.parseLine(context.Background(), line)
}

// Parse joins argv with JoinArgs and parses the result.
func (a *App) Parse(args []string) *ParseResult {
	return a.parseLine(context.Background(), JoinArgs(args))
}

func (a *App) parseLine(ctx context.Context, line string) *ParseResult {
	root := a.Root()
	toks, err := lexer.TokenizeString(line, "<cli>")
	if err != nil {
		res := newParseResult(root, root.Path())
		res.ctx = ctx
		pe := root.parseError(ErrorTypeLex, root.Path(), nil, "%s", err)
		pe.Cause = err
		res.fail(pe)
		res.ExitCode = a.ExitCodes().resolve(pe)
		return res
	}
	res := parseTokens(ctx, root, toks, a.ExitCodes())
	if res.Status == StatusParseError && res.Err != nil {
		res.ExitCode = a.ExitCodes().resolve(res.Err)
	}
	return res
}

// Run parses args, prints help or errors and returns the exit code. Help
// goes to Out; errors followed by the failing command's help go to Err.
func (a *App) Run(ctx context.Context, args []string) int {
	_, code := a.RunResult(ctx, args)
	return code
}

// RunResult is Run that also returns the parse result. The result is nil
// when the app has registration errors or ctx is already done.
func (a *App) RunResult(ctx context.Context, args []string) (*ParseResult, int) {
	out, errw := a.IO().Out(), a.IO().Err()

	if runtime.GOOS == "windows" && a.IO().IsTTY() && os.Getenv("PPARSE_DISABLE_VT") == "" {
		_ = a.IO().EnableVirtualTerminal()
	}
	if err := a.Err(); err != nil {
		fmt.Fprintf(errw, "%s %v\n", a.errorLabel(), err)
		return nil, a.ExitCodes().defaults.GeneralError
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintf(errw, "%s %v\n", a.errorLabel(), err)
		return nil, a.ExitCodes().resolve(err)
	}

	res := a.parseLine(ctx, JoinArgs(args))
	switch res.Status {
	case StatusHelpRequested:
		_ = res.Command().WriteHelp(out, a.helpStyle())
	case StatusParseError:
		a.reportParseError(errw, res.Err)
	case StatusSuccess:
		if res.HandlerErr != nil {
			fmt.Fprintf(errw, "%s %v\n", a.errorLabel(), res.HandlerErr)
		}
	}
	return res, a.ExitCodes().resultCode(res)
}

// RunAndExit runs with os.Args and terminates the process with the exit code.
func (a *App) RunAndExit() {
	os.Exit(a.Run(context.Background(), os.Args[1:]))
}

func (a *App) reportParseError(w io.Writer, pe *ParseError) {
	cliErr := a.errorHandler.formatError(a.errorHandler.ProcessError(fromParseError(pe)))
	if a.IO().SupportsColor() {
		theme := snapio.DefaultTheme(a.IO())
		fmt.Fprintln(w, snapio.NewStyle().Fg(theme.Error).Sprint(a.IO(), cliErr.Error()))
	} else {
		fmt.Fprintln(w, cliErr.Error())
	}
	if a.errorHandler.showHelpOnError && pe.CurrentCommand != nil {
		fmt.Fprintln(w)
		_ = pe.CurrentCommand.WriteHelp(w, a.helpStyle())
	}
}

func (a *App) errorLabel() string {
	if !a.IO().SupportsColor() {
		return "Error:"
	}
	return snapio.NewStyle().Bold().Fg(snapio.DefaultTheme(a.IO()).Error).Sprint(a.IO(), "Error:")
}

func (a *App) helpStyle() HelpStyle {
	m := a.IO()
	if !m.SupportsColor() {
		return HelpStyle{}
	}
	theme := snapio.DefaultTheme(m)
	heading := snapio.NewStyle().Bold().Fg(theme.Primary)
	name := snapio.NewStyle().Fg(theme.Info)
	return HelpStyle{
		Heading: func(s string) string { return heading.Sprint(m, s) },
		Name:    func(s string) string { return name.Sprint(m, s) },
	}
}
