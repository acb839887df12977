package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFiguresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "figures",
		Short: "Manage notable figures",
		RunE:  runFiguresList,
	}

	cmd.AddCommand(
		newFiguresListCmd(),
		newFiguresCreateCmd(),
		newFiguresShowCmd(),
		newFiguresSearchCmd(),
		newFiguresDeleteCmd(),
	)

	return cmd
}

func newFiguresListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List figures",
		RunE:  runFiguresList,
	}
}

func runFiguresList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		figures, err := d.FigureHandler.HandleList(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("listing figures: %w", err)
		}

		if len(figures) == 0 {
			fmt.Printf("No figures in %q yet.\n", u.Name)
			return nil
		}

		fmt.Printf("%-38s %s\n", "ID", "NAME")
		for _, f := range figures {
			fmt.Printf("%-38s %s\n", f.ID, f.Name)
		}
		return nil
	})
}

func newFiguresCreateCmd() *cobra.Command {
	var description, locationID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiguresCreate(cmd, args[0], description, locationID)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Figure description")
	cmd.Flags().StringVar(&locationID, "location", "", "Home location ID")

	return cmd
}

func runFiguresCreate(cmd *cobra.Command, name, description, locationID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		f, err := d.FigureHandler.HandleCreate(ctx, u.ID, name, description, locationID)
		if err != nil {
			return fmt.Errorf("creating figure: %w", err)
		}

		fmt.Printf("Created figure %q (%s)\n", f.Name, f.ID)
		return nil
	})
}

func newFiguresShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show FIGURE-ID",
		Short: "Show a figure and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE:  runFiguresShow,
	}
}

func runFiguresShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		f, err := d.FigureHandler.HandleShow(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", f.Name, f.ID)
		if f.LocationID != "" {
			fmt.Printf("  location: %s\n", f.LocationID)
		}
		if f.Description != "" {
			fmt.Printf("  %s\n", f.Description)
		}

		relationships, err := d.RelationshipHandler.HandleList(ctx, f.ID, "")
		if err != nil {
			return err
		}
		if len(relationships) > 0 {
			fmt.Println("  relationships:")
			for _, info := range relationships {
				arrow := "->"
				if info.Relationship.Bidirectional {
					arrow = "<->"
				}
				fmt.Printf("    %s -[%s]%s %s (strength %d)\n",
					info.Source.Name, info.Relationship.Type, arrow, info.Target.Name, info.Relationship.Strength)
			}
		}
		return nil
	})
}

func newFiguresSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search figures by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiguresSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultSearchLimit, "Maximum results")

	return cmd
}

func runFiguresSearch(cmd *cobra.Command, query string, limit int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		figures, err := d.FigureHandler.HandleSearch(ctx, u.ID, query, limit)
		if err != nil {
			return fmt.Errorf("searching figures: %w", err)
		}

		if len(figures) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, f := range figures {
			fmt.Printf("%-38s %s\n", f.ID, f.Name)
		}
		return nil
	})
}

func newFiguresDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FIGURE-ID",
		Short: "Delete a figure and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE:  runFiguresDelete,
	}
}

func runFiguresDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.FigureHandler.HandleDelete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting figure: %w", err)
		}

		fmt.Printf("Deleted figure %s\n", args[0])
		return nil
	})
}
