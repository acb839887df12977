package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a universe from a JSON archive",
		Long: `Reads a JSON archive and creates a new universe from it. Every entity gets
a fresh ID, so the same archive can be imported repeatedly under different
names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name for the imported universe (defaults to the archived name)")

	return cmd
}

func runImport(cmd *cobra.Command, path, name string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.ArchiveHandler.HandleImport(ctx, path, name)
		if err != nil {
			return fmt.Errorf("importing archive: %w", err)
		}

		d.Universes.Touch(u.Name)
		if err := d.Universes.Save(d.BasePath); err != nil {
			return fmt.Errorf("saving universe registry: %w", err)
		}

		fmt.Printf("Imported universe %q (%s)\n", u.Name, u.ID)
		return nil
	})
}

// ensureParentDir creates the directory holding path.
func ensureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return nil
}
