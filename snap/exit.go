package snap

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/go-pparse/lexer"
	"github.com/dzonerzy/go-pparse/middleware"
)

// ExitError lets a middleware or validator request a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3}
}

// ExitCodeManager maps errors and categories to process exit codes. Every
// parse error maps to GeneralError (1) unless overridden with DefineCLI.
type ExitCodeManager struct {
	codesByName map[string]int
	codesByType map[reflect.Type]int
	codesByCLI  map[ErrorType]int
	defaults    ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByName: make(map[string]int),
		codesByType: make(map[reflect.Type]int),
		codesByCLI:  make(map[ErrorType]int),
		defaults:    defaultExitDefaults(),
	}
	m.codesByCLI[ErrorTypeValidation] = m.defaults.ValidationError

	m.codesByType[reflect.TypeOf(&middleware.ValidationError{})] = m.defaults.ValidationError
	m.codesByType[reflect.TypeOf(&middleware.RecoveryError{})] = m.defaults.GeneralError
	m.codesByType[reflect.TypeOf(&middleware.TimeoutError{})] = m.defaults.GeneralError
	m.codesByType[reflect.TypeOf(&lexer.LexError{})] = m.defaults.GeneralError
	return m
}

// Define registers a named exit-code mapping for documentation. It does not
// affect resolution; use DefineError/DefineCLI for that.
func (e *ExitCodeManager) Define(name string, code int) *ExitCodeManager {
	e.codesByName[name] = code
	return e
}

// Code returns a code registered with Define.
func (e *ExitCodeManager) Code(name string) (int, bool) {
	code, ok := e.codesByName[name]
	return code, ok
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

// DefineCLI overrides the exit code used for one parse error category.
func (e *ExitCodeManager) DefineCLI(typ ErrorType, code int) *ExitCodeManager {
	e.codesByCLI[typ] = code
	return e
}

// Default replaces the manager's default codes.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	return e
}

// resolve converts an error to an exit code according to registered mappings.
// Precedence:
//  1. ExitError (requested code)
//  2. ParseError or CLIError category mapping (DefineCLI)
//  3. Concrete error type mapping (DefineError)
//  4. Default codes
func (e *ExitCodeManager) resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		if code, ok := e.codesByCLI[pe.Type]; ok {
			return code
		}
	}
	var cli *CLIError
	if errors.As(err, &cli) {
		if code, ok := e.codesByCLI[cli.Type]; ok {
			return code
		}
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}
	return e.defaults.GeneralError
}

// resultCode returns the exit code for a finished result.
func (e *ExitCodeManager) resultCode(res *ParseResult) int {
	switch {
	case res.Status == StatusHelpRequested:
		return e.defaults.Success
	case res.Status == StatusParseError && res.Err != nil:
		return e.resolve(res.Err)
	case res.Status == StatusParseError:
		return e.defaults.GeneralError
	}
	return res.ExitCode
}
