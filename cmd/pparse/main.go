package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dzonerzy/go-pparse/cmd/pparse/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
