package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMutateCmd() *cobra.Command {
	var (
		entity  string
		parent  string
		content string
	)

	cmd := &cobra.Command{
		Use:   "mutate <rumor-id>",
		Short: "Create a new variant of a rumor",
		Long: "Appends a mutated variant to the rumor's lineage. Without --content " +
			"the mutation generator rewrites the parent variant.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				variant, err := d.Service.MutateRumor(cmd.Context(), args[0], entity, parent, content, nil)
				if err != nil {
					return fmt.Errorf("mutating rumor: %w", err)
				}
				if variant == nil {
					fmt.Println("Rumor or parent variant not found.")
					return nil
				}
				fmt.Printf("Created variant %s\n", variant.ID)
				fmt.Printf("  %s\n", variant.Content)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity retelling the rumor (required)")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent variant id (default: entity's latest variant)")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Explicit new content (default: generated)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}
