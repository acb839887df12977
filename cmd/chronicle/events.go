package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/chronicle-core/internal/application/handlers"
	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage events and their chronology",
		Long:  "Creates, dates, lists and deletes events.\n\n" + dateSyntaxHelp,
		RunE:  runEventsList,
	}

	cmd.AddCommand(
		newEventsListCmd(),
		newEventsCreateCmd(),
		newEventsShowCmd(),
		newEventsSetDateCmd(),
		newEventsUpdateCmd(),
		newEventsSearchCmd(),
		newEventsDeleteCmd(),
		newEventsDependentsCmd(),
	)

	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events in chronological order",
		RunE:  runEventsList,
	}
}

func runEventsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		rows, err := d.EventHandler.HandleList(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		if len(rows) == 0 {
			fmt.Printf("No events in %q yet.\n", u.Name)
			return nil
		}

		fmt.Printf("%-38s %-12s %-30s %s\n", "ID", "WHEN", "NAME", "DATE")
		for _, row := range rows {
			fmt.Printf("%-38s %-12s %-30s %s\n",
				row.Event.ID, formatAnchor(row.Anchor), row.Event.Name, row.Event.Start.String())
		}
		return nil
	})
}

func newEventsCreateCmd() *cobra.Command {
	var params handlers.CreateParams

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new event",
		Long: `Creates an event with a start date.

` + dateSyntaxHelp + `

Examples:
  chronicle events create "Founding of Aldera" --start exact:100-06-01
  chronicle events create "Silver Jubilee" --start after:EVENT-ID:25 --type cultural`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Name = args[0]
			return runEventsCreate(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.Start, "start", "", "Start date (required)")
	cmd.Flags().StringVar(&params.End, "end", "", "End date for non-instantaneous events")
	cmd.Flags().StringVar(&params.Type, "type", "", "Event type (battle, founding, treaty, ...)")
	cmd.Flags().StringVar(&params.Importance, "importance", "", "Importance (minor, moderate, major, critical, legendary)")
	cmd.Flags().StringVarP(&params.Description, "description", "d", "", "Event description")
	cmd.Flags().StringVar(&params.LocationID, "location", "", "Location ID where the event happens")
	cmd.Flags().StringSliceVar(&params.Participants, "participant", nil, "Participating figure or organization ID (repeatable)")
	cmd.MarkFlagRequired("start")

	return cmd
}

func runEventsCreate(cmd *cobra.Command, params handlers.CreateParams) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		ev, err := d.EventHandler.HandleCreate(ctx, u.ID, params)
		if err != nil {
			return fmt.Errorf("creating event: %w", err)
		}

		fmt.Printf("Created event %q (%s)\n", ev.Name, ev.ID)
		fmt.Printf("  start: %s\n", ev.Start.String())
		return nil
	})
}

func newEventsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show EVENT-ID",
		Short: "Show an event and its resolved position",
		Args:  cobra.ExactArgs(1),
		RunE:  runEventsShow,
	}
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		row, err := d.EventHandler.HandleShow(ctx, u.ID, args[0])
		if err != nil {
			return err
		}
		ev := row.Event

		fmt.Printf("%s (%s)\n", ev.Name, ev.ID)
		fmt.Printf("  type:       %s (%s)\n", ev.Type, ev.Importance)
		fmt.Printf("  start:      %s\n", ev.Start.String())
		if ev.End != nil {
			fmt.Printf("  end:        %s\n", ev.End.String())
		}
		fmt.Printf("  position:   %s\n", formatAnchor(row.Anchor))
		if ev.LocationID != "" {
			fmt.Printf("  location:   %s\n", ev.LocationID)
		}
		if len(ev.Participants) > 0 {
			fmt.Printf("  figures:    %s\n", strings.Join(ev.Participants, ", "))
		}
		if ev.Description != "" {
			fmt.Printf("  %s\n", ev.Description)
		}
		return nil
	})
}

func newEventsSetDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-date EVENT-ID DATE",
		Short: "Change an event's start date",
		Long: `Changes an event's start date and re-resolves everything that depends on it.

` + dateSyntaxHelp,
		Args: cobra.ExactArgs(2),
		RunE: runEventsSetDate,
	}
}

func runEventsSetDate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		becameUnknown, err := d.EventHandler.HandleSetDate(ctx, u.ID, args[0], args[1])
		if err != nil {
			return fmt.Errorf("setting date: %w", err)
		}

		fmt.Printf("Updated date of %s\n", args[0])
		for _, id := range becameUnknown {
			fmt.Printf("  warning: %s can no longer be placed in time\n", id)
		}
		return nil
	})
}

func newEventsUpdateCmd() *cobra.Command {
	var name, typeStr, importance, description string

	cmd := &cobra.Command{
		Use:   "update EVENT-ID",
		Short: "Update an event's fields (not its date)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsUpdate(cmd, args[0], name, typeStr, importance, description)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&typeStr, "type", "", "New event type")
	cmd.Flags().StringVar(&importance, "importance", "", "New importance")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")

	return cmd
}

func runEventsUpdate(cmd *cobra.Command, eventID, name, typeStr, importance, description string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		ev, err := d.EventHandler.HandleUpdate(ctx, u.ID, eventID, name, typeStr, importance, description)
		if err != nil {
			return fmt.Errorf("updating event: %w", err)
		}

		fmt.Printf("Updated event %q (%s)\n", ev.Name, ev.ID)
		return nil
	})
}

func newEventsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search events by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsSearch(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultSearchLimit, "Maximum results")

	return cmd
}

func runEventsSearch(cmd *cobra.Command, query string, limit int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		rows, err := d.EventHandler.HandleSearch(ctx, u.ID, query, limit)
		if err != nil {
			return fmt.Errorf("searching events: %w", err)
		}

		if len(rows) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, row := range rows {
			fmt.Printf("%-38s %-12s %s\n", row.Event.ID, formatAnchor(row.Anchor), row.Event.Name)
		}
		return nil
	})
}

func newEventsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT-ID",
		Short: "Delete an event",
		Long:  "Deletes an event. Events dated relative to it keep their reference but can no longer be placed in time.",
		Args:  cobra.ExactArgs(1),
		RunE:  runEventsDelete,
	}
}

func runEventsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		orphaned, err := d.EventHandler.HandleDelete(ctx, u.ID, args[0])
		if err != nil {
			return fmt.Errorf("deleting event: %w", err)
		}

		fmt.Printf("Deleted event %s\n", args[0])
		for _, id := range orphaned {
			fmt.Printf("  warning: %s referenced the deleted event and can no longer be placed in time\n", id)
		}
		return nil
	})
}

func newEventsDependentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dependents EVENT-ID",
		Short: "List events whose dates depend on this one",
		Args:  cobra.ExactArgs(1),
		RunE:  runEventsDependents,
	}
}

func runEventsDependents(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		dependents, err := d.EventHandler.HandleDependents(ctx, u.ID, args[0])
		if err != nil {
			return err
		}

		if len(dependents) == 0 {
			fmt.Println("No events depend on this one.")
			return nil
		}
		for _, id := range dependents {
			fmt.Println(id)
		}
		return nil
	})
}

// formatAnchor renders the resolved position of an event for display.
func formatAnchor(a entities.Anchor) string {
	if !a.Known {
		return "unknown"
	}
	return fmt.Sprintf("year %d", a.Year)
}
