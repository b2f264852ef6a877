package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKnownCmd() *cobra.Command {
	var (
		categories []string
		minBelief  float64
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "known <entity-id>",
		Short: "List the rumors an entity knows",
		Long:  "Shows each rumor as the entity knows it, most believed first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rumors, err := d.Service.GetRumorsForEntity(cmd.Context(), args[0], categories, minBelief, limit)
				if err != nil {
					return fmt.Errorf("listing rumors: %w", err)
				}

				if len(rumors) == 0 {
					fmt.Printf("%s knows no matching rumors.\n", args[0])
					return nil
				}

				fmt.Printf("%s knows %d rumors:\n\n", args[0], len(rumors))
				for i, r := range rumors {
					fmt.Printf("%d. (%.2f) %s\n", i+1, r.Believability, r.Content)
					fmt.Printf("   id: %s  severity: %s  truth: %.2f\n", r.RumorID, r.Severity, r.TruthValue)
					fmt.Println()
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Filter by category")
	cmd.Flags().Float64VarP(&minBelief, "min-belief", "b", 0, "Minimum believability")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of results")

	return cmd
}
