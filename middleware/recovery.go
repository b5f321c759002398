package middleware

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Recovery creates a middleware that recovers from panics in handlers and
// turns them into a *RecoveryError.
func Recovery(options ...MiddlewareOption) Middleware {
	return RecoveryWithWriter(os.Stderr, options...)
}

// RecoveryWithWriter is Recovery with stack traces written to w.
func RecoveryWithWriter(w io.Writer, options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next Handler) Handler {
		return func(res Result) (code int, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				var stack []byte
				if config.PrintStack {
					stack = make([]byte, config.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}

				recoveryErr := &RecoveryError{
					Panic:   r,
					Command: commandPath(res),
					Stack:   stack,
				}

				if config.PrintStack && len(stack) > 0 && w != nil {
					fmt.Fprintf(w, "PANIC in command '%s': %v\n", recoveryErr.Command, r)
					fmt.Fprintf(w, "Stack trace:\n%s\n", stack)
				}

				if res != nil {
					res.Set("panic_value", r)
				}
				code, err = 0, recoveryErr
			}()

			return next(res)
		}
	}
}

// RecoveryWithHandler creates a recovery middleware with a custom panic handler
func RecoveryWithHandler(handler func(panicVal any, command string, stack []byte) error) Middleware {
	return func(next Handler) Handler {
		return func(res Result) (code int, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := make([]byte, 4096)
					stack = stack[:runtime.Stack(stack, false)]
					code, err = 0, handler(r, commandPath(res), stack)
				}
			}()
			return next(res)
		}
	}
}

// RecoveryToError converts panics to errors without printing stack traces
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

// RecoveryStats tracks recovery statistics
type RecoveryStats struct {
	TotalPanics   int
	CommandPanics map[string]int
	LastPanic     *RecoveryError
}

// NewRecoveryStats creates a new recovery statistics tracker
func NewRecoveryStats() *RecoveryStats {
	return &RecoveryStats{
		CommandPanics: make(map[string]int),
	}
}

// RecoveryWithStats creates a recovery middleware that tracks statistics
func RecoveryWithStats(stats *RecoveryStats) Middleware {
	return RecoveryWithHandler(func(panicVal any, command string, stack []byte) error {
		stats.TotalPanics++
		stats.CommandPanics[command]++
		stats.LastPanic = &RecoveryError{Panic: panicVal, Command: command, Stack: stack}
		return stats.LastPanic
	})
}
