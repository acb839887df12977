package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current universe to a JSON archive",
		Long: `Writes the universe and everything it contains to a JSON archive file.
Relative dates are exported by event reference, so importing the archive
preserves the full chronology.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (defaults to the configured export directory)")

	return cmd
}

func runExport(cmd *cobra.Command, output string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		path := output
		if path == "" {
			path = d.Config.DefaultExportPath(d.BasePath, u.Name)
			if err := ensureParentDir(path); err != nil {
				return err
			}
		}

		if err := d.ArchiveHandler.HandleExport(ctx, u.ID, path); err != nil {
			return fmt.Errorf("exporting universe: %w", err)
		}

		fmt.Printf("Exported universe %q to %s\n", u.Name, path)
		return nil
	})
}
