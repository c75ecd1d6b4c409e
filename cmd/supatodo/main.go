// Package main is the entry point for the supatodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"supatodo/internal/backend"
	"supatodo/internal/cli"
	"supatodo/internal/commands"
)

func main() {
	// Cancel on interrupt so serve and tui shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.Open)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
