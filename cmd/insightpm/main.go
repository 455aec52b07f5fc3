package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"insightpm/internal/cli"
	"insightpm/internal/config"
)

func main() {
	// Interrupts cancel the command context; serve shuts down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(config.NewLoader(), openRuntime)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
