//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"io"
	"testing"

	mw "github.com/dzonerzy/go-pparse/middleware"
	"github.com/dzonerzy/go-pparse/snap"
)

// Category: middleware

func BenchmarkMiddlewareChain(b *testing.B) {
	tests := []struct {
		name  string
		chain []mw.Middleware
	}{
		{"none", nil},
		{"recovery", []mw.Middleware{mw.RecoveryToError()}},
		{"silent logger", []mw.Middleware{mw.SilentLogger(), mw.RecoveryToError()}},
		{"text logger", []mw.Middleware{mw.LoggerWithWriter(io.Discard), mw.RecoveryToError()}},
		{"json logger", []mw.Middleware{mw.LoggerWithWriter(io.Discard, mw.WithLogFormat(mw.LogFormatJSON))}},
		{"validate", []mw.Middleware{mw.Validate(mw.Custom("name", func(mw.Result) error { return nil }))}},
	}

	for _, tt := range tests {
		app := snap.New("bench", "")
		app.Use(tt.chain...)
		app.Command("run", "").
			Option("name", "").Long("name").Back().
			Handler(func(*snap.ParseResult) int { return 0 })
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if res := app.ParseLine("run --name x"); res.ExitCode != 0 {
					b.Fatal(res.HandlerErr)
				}
			}
		})
	}
}
