// Package main contains the entrypoint for the contest reminder bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/contestbot/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}
