package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"detconv/internal/coco"
)

const (
	exitFailure = 1
	exitEmpty   = 2
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, coco.ErrNoResults):
		return exitEmpty
	default:
		return exitFailure
	}
}
