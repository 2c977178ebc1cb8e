// tonal - tonal palette generator
//
// tonal learns how colour changes across the stops of example palettes and
// applies that pattern to any colour, producing ten-stop palettes for
// design systems and themes.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/tonal/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		stop()
		os.Exit(1)
	}
}
