package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChainCmd() *cobra.Command {
	var variantID string

	cmd := &cobra.Command{
		Use:   "chain <rumor-id>",
		Short: "Show the mutation lineage of a variant",
		Long: "Walks from the root statement down to the given variant, showing how " +
			"the content drifted at each retelling.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				chain, err := d.Service.MutationChain(cmd.Context(), args[0], variantID)
				if err != nil {
					return fmt.Errorf("building mutation chain: %w", err)
				}
				if len(chain) == 0 {
					fmt.Println("Rumor or variant not found.")
					return nil
				}

				for i, variant := range chain {
					marker := "└─"
					if i == 0 {
						marker = "●"
					}
					fmt.Printf("%s %s\n", marker, variant.Content)
					fmt.Printf("   variant: %s  by: %s  at: %s\n",
						variant.ID, variant.EntityID, variant.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&variantID, "variant", "", "Variant to trace (default: latest variant)")

	return cmd
}
