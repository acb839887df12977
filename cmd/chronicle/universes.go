package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUniversesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universes",
		Short: "Manage universes",
		RunE:  runUniversesList,
	}

	cmd.AddCommand(
		newUniversesListCmd(),
		newUniversesCreateCmd(),
		newUniversesRenameCmd(),
		newUniversesUseCmd(),
		newUniversesDeleteCmd(),
	)

	return cmd
}

func newUniversesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all universes",
		RunE:  runUniversesList,
	}
}

func runUniversesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		list, err := d.UniverseHandler.HandleList(ctx)
		if err != nil {
			return fmt.Errorf("listing universes: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No universes yet.")
			fmt.Println("Use 'chronicle universes create NAME' to create one.")
			return nil
		}

		fmt.Printf("%-38s %-25s %s\n", "ID", "NAME", "DESCRIPTION")
		for _, u := range list {
			marker := ""
			if u.Name == d.Universes.Current {
				marker = " (current)"
			}
			fmt.Printf("%-38s %-25s %s%s\n", u.ID, u.Name, u.Description, marker)
		}
		return nil
	})
}

func newUniversesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new universe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUniversesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Universe description")

	return cmd
}

func runUniversesCreate(cmd *cobra.Command, name, description string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.UniverseHandler.HandleCreate(ctx, name, description)
		if err != nil {
			return fmt.Errorf("creating universe: %w", err)
		}

		d.Universes.Touch(u.Name)
		if err := d.Universes.Save(d.BasePath); err != nil {
			return fmt.Errorf("saving universe registry: %w", err)
		}

		fmt.Printf("Created universe %q (%s)\n", u.Name, u.ID)
		return nil
	})
}

func newUniversesRenameCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "rename UNIVERSE NEW-NAME",
		Short: "Rename a universe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUniversesRename(cmd, args[0], args[1], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")

	return cmd
}

func runUniversesRename(cmd *cobra.Command, ref, newName, description string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.UniverseHandler.HandleResolve(ctx, ref)
		if err != nil {
			return err
		}
		oldName := u.Name

		u, err = d.UniverseHandler.HandleRename(ctx, u.ID, newName, description)
		if err != nil {
			return fmt.Errorf("renaming universe: %w", err)
		}

		d.Universes.Forget(oldName)
		d.Universes.Touch(u.Name)
		if err := d.Universes.Save(d.BasePath); err != nil {
			return fmt.Errorf("saving universe registry: %w", err)
		}

		fmt.Printf("Renamed universe %q to %q\n", oldName, u.Name)
		return nil
	})
}

func newUniversesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use UNIVERSE",
		Short: "Set the current universe",
		Args:  cobra.ExactArgs(1),
		RunE:  runUniversesUse,
	}
}

func runUniversesUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.UniverseHandler.HandleResolve(ctx, args[0])
		if err != nil {
			return err
		}

		d.Universes.Touch(u.Name)
		if err := d.Universes.Save(d.BasePath); err != nil {
			return fmt.Errorf("saving universe registry: %w", err)
		}

		fmt.Printf("Current universe is now %q\n", u.Name)
		return nil
	})
}

func newUniversesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete UNIVERSE",
		Short: "Delete a universe and everything it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUniversesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

func runUniversesDelete(cmd *cobra.Command, ref string, force bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.UniverseHandler.HandleResolve(ctx, ref)
		if err != nil {
			return err
		}

		if !force {
			fmt.Printf("This deletes universe %q and every event, location, timeline and figure in it.\n", u.Name)
			fmt.Print("Type the universe name to confirm: ")
			var confirm string
			fmt.Scanln(&confirm)
			if confirm != u.Name {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := d.UniverseHandler.HandleDelete(ctx, u.ID); err != nil {
			return fmt.Errorf("deleting universe: %w", err)
		}

		d.Universes.Forget(u.Name)
		if err := d.Universes.Save(d.BasePath); err != nil {
			return fmt.Errorf("saving universe registry: %w", err)
		}

		fmt.Printf("Deleted universe %q\n", u.Name)
		return nil
	})
}
