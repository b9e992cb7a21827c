package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexcodex/cartograph/app/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cmd.ExecuteContext(ctx)
}
