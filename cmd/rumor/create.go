package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		originator string
		categories []string
		severity   string
		truth      float64
	)

	cmd := &cobra.Command{
		Use:   "create <content>",
		Short: "Create a new rumor",
		Long:  "Creates a rumor with the given content. The originator fully believes it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				id, err := d.Service.CreateRumor(cmd.Context(), originator, args[0], categories, severity, truth)
				if err != nil {
					return fmt.Errorf("creating rumor: %w", err)
				}
				fmt.Printf("Created rumor: %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&originator, "originator", "o", "", "Entity that starts the rumor (required)")
	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Categories (political, personal, social, military, economic, religious, historical, gossip, other)")
	cmd.Flags().StringVarP(&severity, "severity", "s", "minor", "Severity (trivial, minor, moderate, major, critical)")
	cmd.Flags().Float64VarP(&truth, "truth", "t", 0.5, "Truth value in [0, 1]")
	_ = cmd.MarkFlagRequired("originator")

	return cmd
}
