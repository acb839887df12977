package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrganizationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organizations",
		Short: "Manage organizations",
		RunE:  runOrganizationsList,
	}

	cmd.AddCommand(
		newOrganizationsListCmd(),
		newOrganizationsCreateCmd(),
		newOrganizationsShowCmd(),
		newOrganizationsSearchCmd(),
		newOrganizationsDeleteCmd(),
	)

	return cmd
}

func newOrganizationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE:  runOrganizationsList,
	}
}

func runOrganizationsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		organizations, err := d.OrganizationHandler.HandleList(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("listing organizations: %w", err)
		}

		if len(organizations) == 0 {
			fmt.Printf("No organizations in %q yet.\n", u.Name)
			return nil
		}

		fmt.Printf("%-38s %-12s %s\n", "ID", "TYPE", "NAME")
		for _, o := range organizations {
			fmt.Printf("%-38s %-12s %s\n", o.ID, o.Type, o.Name)
		}
		return nil
	})
}

func newOrganizationsCreateCmd() *cobra.Command {
	var typeStr, description, locationID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganizationsCreate(cmd, args[0], typeStr, description, locationID)
		},
	}

	cmd.Flags().StringVar(&typeStr, "type", "", "Organization type (guild, order, kingdom, council, cult, company, military, religious, other)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Organization description")
	cmd.Flags().StringVar(&locationID, "location", "", "Seat location ID")

	return cmd
}

func runOrganizationsCreate(cmd *cobra.Command, name, typeStr, description, locationID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		o, err := d.OrganizationHandler.HandleCreate(ctx, u.ID, name, typeStr, description, locationID)
		if err != nil {
			return fmt.Errorf("creating organization: %w", err)
		}

		fmt.Printf("Created organization %q (%s)\n", o.Name, o.ID)
		return nil
	})
}

func newOrganizationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ORGANIZATION-ID",
		Short: "Show an organization",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrganizationsShow,
	}
}

func runOrganizationsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		o, err := d.OrganizationHandler.HandleShow(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", o.Name, o.ID)
		fmt.Printf("  type: %s\n", o.Type)
		if o.LocationID != "" {
			fmt.Printf("  seat: %s\n", o.LocationID)
		}
		if o.Description != "" {
			fmt.Printf("  %s\n", o.Description)
		}
		return nil
	})
}

func newOrganizationsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search organizations by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganizationsSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultSearchLimit, "Maximum results")

	return cmd
}

func runOrganizationsSearch(cmd *cobra.Command, query string, limit int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		organizations, err := d.OrganizationHandler.HandleSearch(ctx, u.ID, query, limit)
		if err != nil {
			return fmt.Errorf("searching organizations: %w", err)
		}

		if len(organizations) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, o := range organizations {
			fmt.Printf("%-38s %s\n", o.ID, o.Name)
		}
		return nil
	})
}

func newOrganizationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ORGANIZATION-ID",
		Short: "Delete an organization",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrganizationsDelete,
	}
}

func runOrganizationsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.OrganizationHandler.HandleDelete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting organization: %w", err)
		}

		fmt.Printf("Deleted organization %s\n", args[0])
		return nil
	})
}
