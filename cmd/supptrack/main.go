// Command supptrack operates on the configured supp-tracker store from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	c := &cli{out: os.Stdout, in: os.Stdin}
	err := newRootCmd(c).ExecuteContext(ctx)
	// post-run hooks are skipped when a command fails
	_ = c.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
