package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/auditforge/paygate/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
