package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/chronicle-core/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize chronicle in the current directory",
		Long:  "Creates a .chronicle directory with a default configuration file.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return err
	}

	fmt.Printf("Initialized chronicle in %s\n", config.ConfigDir(cwd))
	fmt.Println("Create a universe with 'chronicle universes create NAME'.")
	return nil
}
