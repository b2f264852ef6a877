package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBelieveCmd() *cobra.Command {
	var (
		entity     string
		adjustment float64
	)

	cmd := &cobra.Command{
		Use:   "believe <rumor-id>",
		Short: "Adjust how strongly an entity believes a rumor",
		Long: "Applies a signed adjustment to the entity's believability for the rumor, " +
			"clamped to [0, 1].",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				updated, err := d.Service.UpdateBelievability(cmd.Context(), args[0], entity, adjustment)
				if err != nil {
					return fmt.Errorf("updating believability: %w", err)
				}
				if !updated {
					fmt.Println("Rumor not found or entity doesn't know it.")
					return nil
				}
				fmt.Printf("Adjusted %s's belief in %s by %+.2f\n", entity, args[0], adjustment)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity whose belief changes (required)")
	cmd.Flags().Float64VarP(&adjustment, "adjust", "a", 0, "Signed believability adjustment (required)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("adjust")

	return cmd
}
