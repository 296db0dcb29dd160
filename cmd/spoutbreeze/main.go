package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/cli"
)

func main() {
	runner := cli.NewRunner(cli.RunnerOpts{})

	if err := runner.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "spoutbreeze: %v\n", err)
		os.Exit(1)
	}
}
