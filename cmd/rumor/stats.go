package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate rumor statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				stats, err := d.Service.Statistics(cmd.Context())
				if err != nil {
					return fmt.Errorf("computing statistics: %w", err)
				}

				fmt.Printf("Rumors:   %d\n", stats.TotalRumors)
				fmt.Printf("Variants: %d (avg %.1f per rumor)\n", stats.TotalVariants, stats.AverageVariantsPerRumor)
				fmt.Printf("Spreads:  %d (avg %.1f per rumor)\n", stats.TotalSpreads, stats.AverageSpreadsPerRumor)
				if d.Index != nil {
					if indexed, err := d.Index.Count(cmd.Context()); err == nil {
						fmt.Printf("Indexed:  %d\n", indexed)
					}
				}
				fmt.Printf("Average truth value: %.2f\n", stats.AverageTruthValue)

				if len(stats.SeverityDistribution) > 0 {
					fmt.Println("\nBy severity:")
					for sev, count := range stats.SeverityDistribution {
						fmt.Printf("  %-10s %d\n", sev, count)
					}
				}
				if len(stats.CategoryDistribution) > 0 {
					fmt.Println("\nBy category:")
					for cat, count := range stats.CategoryDistribution {
						fmt.Printf("  %-10s %d\n", cat, count)
					}
				}
				return nil
			})
		},
	}
}
