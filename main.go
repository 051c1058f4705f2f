// ./main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheSeraphim/facebook-timeline-cleanup/cmd"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/cleaner"
)

// Exit codes: 0 on success or when nothing started, 1 on configuration or
// startup failure, 130 when an interrupt cut a run short.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)

	switch {
	case err == nil:
	case errors.Is(err, cleaner.ErrInterrupted):
		fmt.Fprintln(os.Stderr, "interrupted")
		stop()
		os.Exit(130)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
