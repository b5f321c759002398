package snap

import (
	"context"
	"sync"

	"github.com/dzonerzy/go-pparse/middleware"
)

// Status is the outcome of a parse.
type Status int

const (
	StatusSuccess Status = iota
	StatusHelpRequested
	StatusParseError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusHelpRequested:
		return "help_requested"
	case StatusParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// ParseResult is the outcome of one parse call. Success, help and errors
// share this shape; Err is set only for StatusParseError.
type ParseResult struct {
	Status       Status
	ExitCode     int
	ErrorMessage string
	Path         string // command path actually executed, e.g. "git commit"
	Keywords     map[string]ArgValue
	Positionals  []ArgValue
	Err          *ParseError

	// HandlerErr is an error returned through the middleware chain, such as
	// a recovered panic or a failed validation.
	HandlerErr error

	command  *Command
	ctx      context.Context
	mu       sync.RWMutex
	sealed   bool
	metadata map[string]any
}

var _ middleware.Result = (*ParseResult)(nil)

func newParseResult(cmd *Command, path string) *ParseResult {
	return &ParseResult{
		Status:   StatusSuccess,
		Path:     path,
		Keywords: make(map[string]ArgValue, len(cmd.keywords)),
		command:  cmd,
	}
}

// Command returns the command the result was produced by: the dispatched
// command on success, the command whose help was requested, or the command
// where parsing failed.
func (r *ParseResult) Command() *Command { return r.command }

// Context returns the context the parse was started with.
func (r *ParseResult) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// OK reports whether the parse succeeded.
func (r *ParseResult) OK() bool { return r.Status == StatusSuccess }

// CommandPath returns Path.
func (r *ParseResult) CommandPath() string { return r.Path }

// Value returns the value bound to a keyword or, failing that, to a
// positional with that name.
func (r *ParseResult) Value(name string) (ArgValue, bool) {
	if v, ok := r.Keywords[name]; ok {
		return v, true
	}
	if r.command == nil {
		return ArgValue{}, false
	}
	for i, p := range r.command.positionals {
		if p.Name == name && i < len(r.Positionals) {
			return r.Positionals[i], true
		}
	}
	return ArgValue{}, false
}

// Positional returns the i-th positional value.
func (r *ParseResult) Positional(i int) (ArgValue, bool) {
	if i < 0 || i >= len(r.Positionals) {
		return ArgValue{}, false
	}
	return r.Positionals[i], true
}

// Has reports whether name holds a non-empty value. Flags count only when
// true.
func (r *ParseResult) Has(name string) bool {
	v, ok := r.Value(name)
	if !ok {
		return false
	}
	switch v.Kind() {
	case ValueNone:
		return false
	case ValueBool:
		b, _ := v.Bool()
		return b
	case ValueString:
		s, _ := v.Str()
		return s != ""
	case ValueStringList:
		return len(v.list) > 0
	}
	return true
}

// Bool returns a bool value.
func (r *ParseResult) Bool(name string) (bool, bool) {
	v, ok := r.Value(name)
	if !ok {
		return false, false
	}
	return v.Bool()
}

// Enabled folds a flag and its generated negation: it is true when name is
// set and "no_<name>" was not given.
func (r *ParseResult) Enabled(name string) bool {
	on, _ := r.Bool(name)
	off, _ := r.Bool("no_" + name)
	return on && !off
}

// Int returns an integer value.
func (r *ParseResult) Int(name string) (int64, bool) {
	v, ok := r.Value(name)
	if !ok {
		return 0, false
	}
	return v.Int()
}

// Float returns a float value. Integer values are widened.
func (r *ParseResult) Float(name string) (float64, bool) {
	v, ok := r.Value(name)
	if !ok {
		return 0, false
	}
	if i, isInt := v.Int(); isInt {
		return float64(i), true
	}
	return v.Float()
}

// String returns a string value.
func (r *ParseResult) String(name string) (string, bool) {
	v, ok := r.Value(name)
	if !ok {
		return "", false
	}
	return v.Str()
}

// Strings returns a list value.
func (r *ParseResult) Strings(name string) ([]string, bool) {
	v, ok := r.Value(name)
	if !ok {
		return nil, false
	}
	return v.Strings()
}

// Args returns the positional values as text. Lists are flattened.
func (r *ParseResult) Args() []string {
	out := make([]string, 0, len(r.Positionals))
	for _, v := range r.Positionals {
		switch v.Kind() {
		case ValueNone:
		case ValueStringList:
			out = append(out, v.list...)
		default:
			out = append(out, v.String())
		}
	}
	return out
}

// Set stores handler metadata. It is a no-op once the result is sealed.
func (r *ParseResult) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	if r.metadata == nil {
		r.metadata = make(map[string]any)
	}
	r.metadata[key] = value
}

// Get returns metadata stored with Set, or nil.
func (r *ParseResult) Get(key string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata[key]
}

// Seal freezes the metadata. The timeout middleware seals a result whose
// handler outlived its deadline so the abandoned handler cannot write to it.
func (r *ParseResult) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *ParseResult) fail(pe *ParseError) *ParseResult {
	r.Status = StatusParseError
	r.ExitCode = 1
	r.ErrorMessage = pe.Message
	r.Err = pe
	return r
}

func (r *ParseResult) helpRequested() *ParseResult {
	r.Status = StatusHelpRequested
	r.ExitCode = 0
	return r
}
