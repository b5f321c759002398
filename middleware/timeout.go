package middleware

import (
	"context"
	"time"
)

// TimeoutError is returned when a handler outlives its deadline.
type TimeoutError struct {
	Duration time.Duration
	Command  string
}

func (e *TimeoutError) Error() string {
	return "command '" + e.Command + "' timed out after " + e.Duration.String()
}

// parentContext returns the context the result was parsed under, if the
// result carries one.
func parentContext(res Result) context.Context {
	if c, ok := res.(interface{ Context() context.Context }); ok && c.Context() != nil {
		return c.Context()
	}
	return context.Background()
}

// sealer is implemented by results that can refuse writes after a deadline.
type sealer interface{ Seal() }

// Timeout fails the run with a *TimeoutError once duration has elapsed.
// The handler keeps running in its goroutine and its outcome is discarded.
// A result implementing Seal is sealed on expiry, so a late res.Set from the
// abandoned handler is dropped instead of racing with the caller.
func Timeout(duration time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(res Result) (int, error) {
			if duration <= 0 {
				return next(res)
			}
			parent := parentContext(res)
			ctx, cancel := context.WithTimeout(parent, duration)
			defer cancel()

			type outcome struct {
				code int
				err  error
			}
			done := make(chan outcome, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- outcome{1, &RecoveryError{Panic: r, Command: commandPath(res)}}
					}
				}()
				code, err := next(res)
				done <- outcome{code, err}
			}()

			select {
			case o := <-done:
				return o.code, o.err
			case <-ctx.Done():
				if s, ok := res.(sealer); ok {
					s.Seal()
				}
				if parent.Err() != nil {
					return 1, parent.Err()
				}
				return 1, &TimeoutError{Duration: duration, Command: commandPath(res)}
			}
		}
	}
}

// TimeoutPerCommand applies the timeout registered for the command path,
// falling back to defaultTimeout.
func TimeoutPerCommand(timeouts map[string]time.Duration, defaultTimeout time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(res Result) (int, error) {
			d, ok := timeouts[res.CommandPath()]
			if !ok {
				d = defaultTimeout
			}
			return Timeout(d)(next)(res)
		}
	}
}

// TimeoutFromOption reads the deadline from a string option holding a Go
// duration ("1.5s", "200ms"). A missing or unparsable value uses
// defaultTimeout.
func TimeoutFromOption(name string, defaultTimeout time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(res Result) (int, error) {
			d := defaultTimeout
			if s, ok := res.String(name); ok && s != "" {
				if parsed, err := time.ParseDuration(s); err == nil {
					d = parsed
				}
			}
			return Timeout(d)(next)(res)
		}
	}
}
