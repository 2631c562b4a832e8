package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MICA1991/financelitracy-quiz/internal/reportctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := reportctl.Run(ctx, os.Args, os.Stdout)
	stop()
	os.Exit(code)
}
