package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTimelinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timelines",
		Short: "Manage timelines",
		RunE:  runTimelinesList,
	}

	cmd.AddCommand(
		newTimelinesListCmd(),
		newTimelinesCreateCmd(),
		newTimelinesShowCmd(),
		newTimelinesSetMainCmd(),
		newTimelinesAssignCmd(),
		newTimelinesUnassignCmd(),
		newTimelinesRangeCmd(),
		newTimelinesMergeCmd(),
		newTimelinesDeleteCmd(),
	)

	return cmd
}

func newTimelinesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List timelines",
		RunE:  runTimelinesList,
	}
}

func runTimelinesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		list, err := d.TimelineHandler.HandleList(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("listing timelines: %w", err)
		}

		if len(list) == 0 {
			fmt.Printf("No timelines in %q yet.\n", u.Name)
			return nil
		}

		fmt.Printf("%-38s %-25s %s\n", "ID", "NAME", "")
		for _, tl := range list {
			marker := ""
			if tl.IsMain {
				marker = "(main)"
			}
			fmt.Printf("%-38s %-25s %s\n", tl.ID, tl.Name, marker)
		}
		return nil
	})
}

func newTimelinesCreateCmd() *cobra.Command {
	var description string
	var main bool

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimelinesCreate(cmd, args[0], description, main)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Timeline description")
	cmd.Flags().BoolVar(&main, "main", false, "Make this the universe's main timeline")

	return cmd
}

func runTimelinesCreate(cmd *cobra.Command, name, description string, main bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		u, err := d.resolveUniverse(ctx)
		if err != nil {
			return err
		}

		tl, err := d.TimelineHandler.HandleCreate(ctx, u.ID, name, description, main)
		if err != nil {
			return fmt.Errorf("creating timeline: %w", err)
		}

		fmt.Printf("Created timeline %q (%s)\n", tl.Name, tl.ID)
		return nil
	})
}

func newTimelinesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show TIMELINE-ID",
		Short: "Show a timeline and its events in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimelinesShow,
	}
}

func runTimelinesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		tl, members, err := d.TimelineHandler.HandleShow(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", tl.Name, tl.ID)
		if tl.IsMain {
			fmt.Println("  main timeline")
		}
		if tl.Description != "" {
			fmt.Printf("  %s\n", tl.Description)
		}

		count := 0
		for ev := range members {
			fmt.Printf("  %-38s %-30s %s\n", ev.ID, ev.Name, ev.Start.String())
			count++
		}
		if count == 0 {
			fmt.Println("  (no events)")
		}
		return nil
	})
}

func newTimelinesSetMainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-main TIMELINE-ID",
		Short: "Make a timeline the universe's main timeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimelinesSetMain,
	}
}

func runTimelinesSetMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.TimelineHandler.HandleSetMain(ctx, args[0]); err != nil {
			return fmt.Errorf("setting main timeline: %w", err)
		}

		fmt.Printf("Timeline %s is now the main timeline\n", args[0])
		return nil
	})
}

func newTimelinesAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign TIMELINE-ID EVENT-ID",
		Short: "Add an event to a timeline",
		Args:  cobra.ExactArgs(2),
		RunE:  runTimelinesAssign,
	}
}

func runTimelinesAssign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.TimelineHandler.HandleAssign(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("assigning event: %w", err)
		}

		fmt.Printf("Added event %s to timeline %s\n", args[1], args[0])
		return nil
	})
}

func newTimelinesUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TIMELINE-ID EVENT-ID",
		Short: "Remove an event from a timeline",
		Args:  cobra.ExactArgs(2),
		RunE:  runTimelinesUnassign,
	}
}

func runTimelinesUnassign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.TimelineHandler.HandleUnassign(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("unassigning event: %w", err)
		}

		fmt.Printf("Removed event %s from timeline %s\n", args[1], args[0])
		return nil
	})
}

func newTimelinesRangeCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "range TIMELINE-ID",
		Short: "List a timeline's events within a year range",
		Long:  "Lists events whose resolved year falls inside the inclusive bounds. Events without a resolvable date never match.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimelinesRange(cmd, args[0], from, to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Lower year bound (inclusive, empty for open)")
	cmd.Flags().StringVar(&to, "to", "", "Upper year bound (inclusive, empty for open)")

	return cmd
}

func runTimelinesRange(cmd *cobra.Command, timelineID, from, to string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		events, err := d.TimelineHandler.HandleRange(ctx, timelineID, from, to)
		if err != nil {
			return fmt.Errorf("querying range: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No events in range.")
			return nil
		}
		for _, ev := range events {
			fmt.Printf("%-38s %-30s %s\n", ev.ID, ev.Name, ev.Start.String())
		}
		return nil
	})
}

func newTimelinesMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge TIMELINE-ID...",
		Short: "Show a merged chronological view of several timelines",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runTimelinesMerge,
	}
}

func runTimelinesMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		merged, err := d.TimelineHandler.HandleMerge(ctx, args)
		if err != nil {
			return fmt.Errorf("merging timelines: %w", err)
		}

		for _, m := range merged {
			fmt.Printf("%-38s %-30s [%s]\n", m.Event.ID, m.Event.Name, strings.Join(m.TimelineIDs, ", "))
		}
		return nil
	})
}

func newTimelinesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TIMELINE-ID",
		Short: "Delete a timeline (its events remain)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimelinesDelete,
	}
}

func runTimelinesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.TimelineHandler.HandleDelete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting timeline: %w", err)
		}

		fmt.Printf("Deleted timeline %s\n", args[0])
		return nil
	})
}
