package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/rumor-mill/internal/domain/services"
)

func newSpreadCmd() *cobra.Command {
	var (
		from         string
		to           string
		modifier     float64
		mutate       bool
		probability  float64
		relationship float64
		location     string
		usePolicy    bool
	)

	cmd := &cobra.Command{
		Use:   "spread <rumor-id>",
		Short: "Spread a rumor from one entity to another",
		Long: "Records that the receiver heard the rumor from the sender. Each spread " +
			"is a separate retelling; repeating the command appends another record. " +
			"With --policy the configured thresholds and location modifiers decide " +
			"whether the spread succeeds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				var (
					spread bool
					err    error
				)
				if usePolicy {
					spread, err = d.Service.SpreadWithPolicy(cmd.Context(), args[0], from, to, services.SpreadContext{
						RelationshipStrength:  relationship,
						LocationType:          location,
						BelievabilityModifier: modifier,
					})
				} else {
					spread, err = d.Service.SpreadRumor(cmd.Context(), args[0], from, to, services.SpreadOptions{
						BelievabilityModifier: modifier,
						Mutate:                mutate,
						MutationProbability:   probability,
					})
				}
				if err != nil {
					return fmt.Errorf("spreading rumor: %w", err)
				}
				if !spread {
					fmt.Println("Rumor did not spread.")
					return nil
				}
				fmt.Printf("Spread rumor %s from %s to %s\n", args[0], from, to)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Sending entity (required)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Receiving entity (required)")
	cmd.Flags().Float64VarP(&modifier, "modifier", "m", 0, "Believability modifier applied to the receiver")
	cmd.Flags().BoolVar(&mutate, "mutate", false, "Allow the rumor to mutate in transit")
	cmd.Flags().Float64Var(&probability, "probability", 0, "Mutation probability (default 0.2 when --mutate is set)")
	cmd.Flags().BoolVar(&usePolicy, "policy", false, "Apply propagation policy (thresholds, location modifiers)")
	cmd.Flags().Float64Var(&relationship, "relationship", 0, "Relationship strength in [-1, 1] (policy mode)")
	cmd.Flags().StringVar(&location, "location", "", "Location type, e.g. tavern, market (policy mode)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
