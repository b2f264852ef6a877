package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSimilarCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "similar <text>",
		Short: "Find rumors semantically similar to the given text",
		Long:  "Searches the Qdrant rumor index. Requires an embedder API key and a running Qdrant.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				hits, err := d.Service.FindSimilar(cmd.Context(), args[0], limit)
				if err != nil {
					return fmt.Errorf("searching rumors: %w", err)
				}

				if len(hits) == 0 {
					fmt.Println("No similar rumors found (is the index configured?).")
					return nil
				}

				for i, hit := range hits {
					fmt.Printf("%d. (%.3f) %s\n", i+1, hit.Score, hit.Content)
					fmt.Printf("   id: %s\n", hit.RumorID)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")

	return cmd
}
