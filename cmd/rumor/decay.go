package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDecayCmd() *cobra.Command {
	var (
		rate     float64
		entities []string
	)

	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Apply believability decay to all rumors",
		Long: "Reduces believability across every spread record. Severity and rumor " +
			"age scale the configured base rate. Believability approaches zero but " +
			"rumors are never deleted by decay.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				affected, err := d.Service.DecayRumors(cmd.Context(), rate, entities)
				if err != nil {
					return fmt.Errorf("applying decay: %w", err)
				}
				fmt.Printf("Decay affected %d rumors.\n", affected)
				return nil
			})
		},
	}

	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "Base decay rate (default: configured rate)")
	cmd.Flags().StringSliceVarP(&entities, "entity", "e", nil, "Only decay belief for these entities")

	return cmd
}
