// Package main provides the entry point for the chronicle CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalUniverse string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "chronicle",
		Short:   "A chronology and location catalog for fictional universes",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalUniverse, "universe", "u", "", "Universe to operate on (defaults to the current universe)")

	rootCmd.AddCommand(
		newInitCmd(),
		newUniversesCmd(),
		newEventsCmd(),
		newLocationsCmd(),
		newTimelinesCmd(),
		newFiguresCmd(),
		newOrganizationsCmd(),
		newRelateCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
