// Package middleware provides built-in middleware for go-pparse command handlers.
// Focused on 4 essential middleware: Logger, Recovery, Timeout and Validator
package middleware

import (
	"fmt"
)

// This package defines middleware using interfaces to avoid import cycles.
// The snap package imports this package and *snap.ParseResult satisfies Result.

// Result describes the parse outcome a handler runs against. It is
// implemented by *snap.ParseResult.
type Result interface {
	// CommandPath returns the space separated path of the dispatched
	// command, e.g. "git commit".
	CommandPath() string

	// Args returns the positional values rendered as text, in declaration
	// order. The returned slice should be treated as read-only.
	Args() []string

	// Has reports whether a keyword or positional holds a non-empty value.
	Has(name string) bool

	// String returns the string value bound to name.
	String(name string) (string, bool)

	// Bool returns the bool value bound to name.
	Bool(name string) (bool, bool)

	// Int returns the integer value bound to name.
	Int(name string) (int64, bool)

	// Float returns the float value bound to name.
	Float(name string) (float64, bool)

	// Strings returns the list value bound to name.
	Strings(name string) ([]string, bool)

	// Set stores a key/value pair in the result metadata. Keys should be
	// namespaced to avoid collisions (e.g., "logger.request_id").
	Set(key string, value any)

	// Get retrieves a value previously stored via Set, or nil.
	Get(key string) any
}

// Handler is the signature middleware wraps. The int is the exit code the
// handler asks for; a non-nil error is resolved to an exit code by the app.
type Handler func(res Result) (int, error)

// Middleware defines the middleware function signature
type Middleware func(next Handler) Handler

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to a Handler. Middleware are wrapped
// in the order they appear in the chain.
func (chain MiddlewareChain) Apply(h Handler) Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	return append(chain, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// Error types for middleware

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Configuration types

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel         LogLevel
	LogOutput        LogOutput
	LogFormat        LogFormat
	IncludeArgs      bool
	RequestIDs       bool
	PrintStack       bool
	StackSize        int
	CustomValidators map[string]ValidatorFunc
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// ParseLogFormat maps "text" or "json" to a LogFormat.
func ParseLogFormat(s string) (LogFormat, error) {
	switch s {
	case "", "text":
		return LogFormatText, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return LogFormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// MiddlewareOption mutates a MiddlewareConfig.
type MiddlewareOption func(config *MiddlewareConfig)

func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:         LogLevelInfo,
		LogOutput:        LogOutputStderr,
		LogFormat:        LogFormatText,
		IncludeArgs:      true,
		PrintStack:       true,
		StackSize:        4096,
		CustomValidators: make(map[string]ValidatorFunc),
	}
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

// WithRequestID makes Logger tag runs without a "logger.request_id" with a
// fresh UUID.
func WithRequestID(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.RequestIDs = enabled
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

// Utility functions

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func commandPath(res Result) string {
	if res == nil || res.CommandPath() == "" {
		return "unknown"
	}
	return res.CommandPath()
}
