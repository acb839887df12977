package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage the location hierarchy",
		RunE:  runLocationsRoots,
	}

	cmd.AddCommand(
		newLocationsListCmd(),
		newLocationsCreateCmd(),
		newLocationsShowCmd(),
		newLocationsMoveCmd(),
		newLocationsTreeCmd(),
		newLocationsSearchCmd(),
		newLocationsDeleteCmd(),
	)

	return cmd
}

func newLocationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List root locations",
		RunE:  runLocationsRoots,
	}
}

func runLocationsRoots(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		roots, err := d.LocationHandler.HandleRoots(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("listing locations: %w", err)
		}

		if len(roots) == 0 {
			fmt.Printf("No locations in %q yet.\n", u.Name)
			return nil
		}

		fmt.Printf("%-38s %-12s %s\n", "ID", "TYPE", "NAME")
		for _, loc := range roots {
			fmt.Printf("%-38s %-12s %s\n", loc.ID, loc.Type, loc.Name)
		}
		return nil
	})
}

func newLocationsCreateCmd() *cobra.Command {
	var typeStr, description, parentID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new location",
		Long: `Creates a location, optionally nested under a parent.

Examples:
  chronicle locations create Westmark --type region
  chronicle locations create Harrowgate --type city --parent PARENT-ID`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationsCreate(cmd, args[0], typeStr, description, parentID)
		},
	}

	cmd.Flags().StringVar(&typeStr, "type", "", "Location type (continent, region, city, town, village, building, landmark, realm, other)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Location description")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent location ID")

	return cmd
}

func runLocationsCreate(cmd *cobra.Command, name, typeStr, description, parentID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		loc, err := d.LocationHandler.HandleCreate(ctx, u.ID, name, typeStr, description, parentID)
		if err != nil {
			return fmt.Errorf("creating location: %w", err)
		}

		fmt.Printf("Created location %q (%s)\n", loc.Name, loc.ID)
		return nil
	})
}

func newLocationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show LOCATION-ID",
		Short: "Show a location, its path and its children",
		Args:  cobra.ExactArgs(1),
		RunE:  runLocationsShow,
	}
}

func runLocationsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		loc, ancestors, err := d.LocationHandler.HandleShow(ctx, u.ID, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", loc.Name, loc.ID)
		fmt.Printf("  type: %s\n", loc.Type)
		if len(ancestors) > 0 {
			// Root first reads as a path.
			names := make([]string, 0, len(ancestors)+1)
			for i := len(ancestors) - 1; i >= 0; i-- {
				names = append(names, ancestors[i].Name)
			}
			names = append(names, loc.Name)
			fmt.Printf("  path: %s\n", strings.Join(names, " > "))
		}
		if loc.Description != "" {
			fmt.Printf("  %s\n", loc.Description)
		}

		children, err := d.LocationHandler.HandleChildren(ctx, u.ID, loc.ID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			fmt.Println("  children:")
			for _, child := range children {
				fmt.Printf("    %-38s %s\n", child.ID, child.Name)
			}
		}
		return nil
	})
}

func newLocationsMoveCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "move LOCATION-ID",
		Short: "Move a location to a new parent",
		Long:  "Moves a location under another parent. Without --parent the location becomes a root.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationsMove(cmd, args[0], parentID)
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "New parent location ID (empty makes it a root)")

	return cmd
}

func runLocationsMove(cmd *cobra.Command, locationID, parentID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		if err := d.LocationHandler.HandleMove(ctx, u.ID, locationID, parentID); err != nil {
			return fmt.Errorf("moving location: %w", err)
		}

		if parentID == "" {
			fmt.Printf("Moved %s to the root level\n", locationID)
		} else {
			fmt.Printf("Moved %s under %s\n", locationID, parentID)
		}
		return nil
	})
}

func newLocationsTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree LOCATION-ID",
		Short: "Show a location's subtree",
		Args:  cobra.ExactArgs(1),
		RunE:  runLocationsTree,
	}
}

func runLocationsTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		loc, _, err := d.LocationHandler.HandleShow(ctx, u.ID, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", loc.Name, loc.Type)

		subtree, err := d.LocationHandler.HandleSubtree(ctx, u.ID, loc.ID)
		if err != nil {
			return err
		}

		depth := map[string]int{loc.ID: 0}
		for node := range subtree {
			depth[node.ID] = depth[node.ParentID] + 1
			fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth[node.ID]), node.Name, node.Type)
		}
		return nil
	})
}

func newLocationsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search locations by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationsSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultSearchLimit, "Maximum results")

	return cmd
}

func runLocationsSearch(cmd *cobra.Command, query string, limit int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		locations, err := d.LocationHandler.HandleSearch(ctx, u.ID, query, limit)
		if err != nil {
			return fmt.Errorf("searching locations: %w", err)
		}

		if len(locations) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, loc := range locations {
			fmt.Printf("%-38s %-12s %s\n", loc.ID, loc.Type, loc.Name)
		}
		return nil
	})
}

func newLocationsDeleteCmd() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "delete LOCATION-ID",
		Short: "Delete a location",
		Long: `Deletes a location under an explicit policy:

  restrict   fail if the location has children (default)
  cascade    delete the whole subtree; events and figures there lose the reference
  reparent   re-attach children to the deleted location's parent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocationsDelete(cmd, args[0], policy)
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "restrict", "Delete policy (restrict, cascade, reparent)")

	return cmd
}

func runLocationsDelete(cmd *cobra.Command, locationID, policy string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		deleted, err := d.LocationHandler.HandleDelete(ctx, u.ID, locationID, policy)
		if err != nil {
			return fmt.Errorf("deleting location: %w", err)
		}

		fmt.Printf("Deleted %d location(s)\n", len(deleted))
		return nil
	})
}
