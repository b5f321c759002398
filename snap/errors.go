package snap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dzonerzy/go-pparse/internal/fuzzy"
	"github.com/dzonerzy/go-pparse/lexer"
)

// ErrorType represents error categories for parse and registration failures.
// These categories drive suggestion logic and exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeUnknownFlag        ErrorType = "unknown_flag"
	ErrorTypeMissingValue       ErrorType = "missing_value"
	ErrorTypeInvalidValue       ErrorType = "invalid_value"
	ErrorTypeUnexpectedArgument ErrorType = "unexpected_argument"
	ErrorTypeMissingRequired    ErrorType = "missing_required"
	ErrorTypeAmbiguousAlias     ErrorType = "ambiguous_alias"
	ErrorTypeLex                ErrorType = "lex_error"
	ErrorTypeInvalidGrammar     ErrorType = "invalid_grammar"
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeInternal           ErrorType = "internal_error"
)

// Registration errors. Builders and Add* methods wrap these with the
// offending name.
var (
	ErrReservedName        = errors.New("reserved argument name")
	ErrInvalidName         = errors.New("invalid name")
	ErrDuplicateArgument   = errors.New("duplicate argument")
	ErrPositionalFlag      = errors.New("positional argument cannot be a flag")
	ErrDuplicateSubcommand = errors.New("duplicate subcommand")
	ErrAliasConflict       = errors.New("alias conflicts with a sibling command")
	ErrCommandAttached     = errors.New("command is already attached")
	ErrInvalidValue        = errors.New("invalid value")
)

// ParseError describes why a token sequence did not match the grammar.
type ParseError struct {
	Type    ErrorType
	Message string
	Flag    string     // option text as typed, for option errors
	Arg     string     // offending token text, for unexpected arguments
	Command string     // path of the command being parsed
	Span    lexer.Span // source span of the offending token, if any
	Cause   error

	// CurrentCommand is the command context where the error occurred; used
	// for suggestions and for printing the right help text.
	CurrentCommand *Command
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// NewParseError creates a new ParseError with the given type and message
func NewParseError(errType ErrorType, message string) *ParseError {
	return &ParseError{
		Type:    errType,
		Message: message,
	}
}

// CLIError is a user-facing error enriched with suggestions.
type CLIError struct {
	Type           ErrorType
	Message        string
	Suggestions    []string
	Cause          error
	Context        map[string]any
	formattedError string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.formattedError != "" {
		return e.formattedError
	}
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Cause }

// NewError creates a new CLIError with the given type and message
func NewError(typ ErrorType, message string) *CLIError {
	return &CLIError{
		Type:        typ,
		Message:     message,
		Suggestions: make([]string, 0),
		Context:     make(map[string]any),
	}
}

// WithSuggestion adds a suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithCause adds an underlying cause to the error
func (e *CLIError) WithCause(cause error) *CLIError {
	e.Cause = cause
	return e
}

// WithContext adds context information to the error
func (e *CLIError) WithContext(key string, value any) *CLIError {
	e.Context[key] = value
	return e
}

// fromParseError lifts a ParseError into a CLIError carrying the context
// the suggestion logic needs.
func fromParseError(pe *ParseError) *CLIError {
	err := NewError(pe.Type, pe.Message).WithCause(pe)
	if pe.Flag != "" {
		_ = err.WithContext("flag", pe.Flag)
	}
	if pe.Arg != "" {
		_ = err.WithContext("arg", pe.Arg)
	}
	if pe.CurrentCommand != nil {
		_ = err.WithContext("current_command", pe.CurrentCommand)
	}
	return err
}

// ErrorHandler provides smart error handling with fuzzy matching suggestions.
type ErrorHandler struct {
	suggestCommands bool
	suggestFlags    bool
	maxDistance     int
	maxSuggestions  int
	customHandlers  map[ErrorType]func(*CLIError) *CLIError
	showHelpOnError bool
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		suggestCommands: false, // opt-in
		suggestFlags:    false, // opt-in
		maxDistance:     2,
		maxSuggestions:  1,
		customHandlers:  make(map[ErrorType]func(*CLIError) *CLIError),
		showHelpOnError: true,
	}
}

// SuggestCommands enables/disables command suggestions
func (eh *ErrorHandler) SuggestCommands(enabled bool) *ErrorHandler {
	eh.suggestCommands = enabled
	return eh
}

// SuggestFlags enables/disables flag suggestions
func (eh *ErrorHandler) SuggestFlags(enabled bool) *ErrorHandler {
	eh.suggestFlags = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// MaxSuggestions sets how many "Did you mean" candidates an error lists.
func (eh *ErrorHandler) MaxSuggestions(n int) *ErrorHandler {
	if n < 1 {
		n = 1
	}
	eh.maxSuggestions = n
	return eh
}

// ShowHelpOnError controls whether the failing command's help is printed
// after a parse error.
func (eh *ErrorHandler) ShowHelpOnError(enabled bool) *ErrorHandler {
	eh.showHelpOnError = enabled
	return eh
}

// Handle registers a custom handler for a specific error type
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*CLIError) *CLIError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// ProcessError applies custom handlers and adds suggestions.
func (eh *ErrorHandler) ProcessError(err *CLIError) *CLIError {
	if handler, exists := eh.customHandlers[err.Type]; exists {
		err = handler(err)
	}

	cmd, _ := err.Context["current_command"].(*Command)
	if cmd == nil {
		return err
	}

	switch err.Type {
	case ErrorTypeUnknownFlag:
		if !eh.suggestFlags {
			break
		}
		if flag, ok := err.Context["flag"].(string); ok && strings.HasPrefix(flag, "--") {
			found := fuzzy.FindSuggestions(strings.TrimLeft(flag, "-"), cmd.longNames(), eh.maxDistance, eh.maxSuggestions)
			for i := range found {
				found[i] = "--" + found[i]
			}
			eh.suggest(err, found)
		}
	case ErrorTypeUnexpectedArgument:
		if !eh.suggestCommands {
			break
		}
		if arg, ok := err.Context["arg"].(string); ok {
			eh.suggest(err, fuzzy.FindSuggestions(arg, cmd.dispatchNames(), eh.maxDistance, eh.maxSuggestions))
		}
	}
	return err
}

func (eh *ErrorHandler) suggest(err *CLIError, found []string) {
	switch len(found) {
	case 0:
	case 1:
		_ = err.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", found[0]))
	default:
		_ = err.WithSuggestion(fmt.Sprintf("Did you mean one of '%s'?", strings.Join(found, "', '")))
	}
}

// formatError renders "Error: <message>" followed by one indented line per
// suggestion. Help text is printed separately.
func (eh *ErrorHandler) formatError(err *CLIError) *CLIError {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", err.Message)
	for _, suggestion := range err.Suggestions {
		fmt.Fprintf(&b, "  %s\n", suggestion)
	}
	err.formattedError = strings.TrimRight(b.String(), "\n")
	return err
}

// longNames returns the command's long option names without dashes, sorted.
func (c *Command) longNames() []string {
	names := make([]string, 0, len(c.longs))
	for name := range c.longs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dispatchNames returns subcommand names and aliases, sorted.
func (c *Command) dispatchNames() []string {
	var names []string
	for name, sub := range c.subcommands {
		names = append(names, name)
		names = append(names, sub.aliases...)
	}
	sort.Strings(names)
	return names
}
