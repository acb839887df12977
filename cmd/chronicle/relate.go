package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelateCmd() *cobra.Command {
	var strength int
	var bidirectional bool

	cmd := &cobra.Command{
		Use:   "relate SOURCE-FIGURE TYPE TARGET-FIGURE",
		Short: "Create a relationship between two figures",
		Long: `Creates a relationship link between two figures by ID.

Valid relationship types:
  - parent, child, sibling, spouse
  - friend, ally, enemy, rival
  - mentor, student, ruler, subject

Examples:
  chronicle relate FIG-A ally FIG-B
  chronicle relate FIG-A enemy FIG-B --bidirectional=false --strength 5`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args, strength, bidirectional)
		},
	}

	cmd.Flags().IntVar(&strength, "strength", 3, "Relationship strength (1-5)")
	cmd.Flags().BoolVar(&bidirectional, "bidirectional", true, "Create bidirectional relationship")

	cmd.AddCommand(
		newRelateDeleteCmd(),
		newRelateBetweenCmd(),
	)

	return cmd
}

func runRelate(cmd *cobra.Command, args []string, strength int, bidirectional bool) error {
	ctx := cmd.Context()
	sourceID := args[0]
	relType := args[1]
	targetID := args[2]

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		rel, err := d.RelationshipHandler.HandleCreate(ctx, sourceID, relType, targetID, strength, bidirectional)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		fmt.Printf("Created relationship: %s\n", rel.ID)
		fmt.Printf("  %s -[%s]-> %s\n", sourceID, rel.Type, targetID)
		if rel.Bidirectional {
			fmt.Println("  (bidirectional)")
		}
		return nil
	})
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RELATIONSHIP-ID",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		if err := d.RelationshipHandler.HandleDelete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Printf("Deleted relationship: %s\n", args[0])
		return nil
	})
}

func newRelateBetweenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "between FIGURE-A FIGURE-B",
		Short: "Find the direct relationship between two figures",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelateBetween,
	}
}

func runRelateBetween(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if _, err := d.resolveUniverse(ctx); err != nil {
			return err
		}

		rel, err := d.RelationshipHandler.HandleFindBetween(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if rel == nil {
			fmt.Println("No direct relationship.")
			return nil
		}

		arrow := "->"
		if rel.Bidirectional {
			arrow = "<->"
		}
		fmt.Printf("%s: %s -[%s]%s %s (strength %d)\n",
			rel.ID, rel.SourceFigureID, rel.Type, arrow, rel.TargetFigureID, rel.Strength)
		return nil
	})
}
