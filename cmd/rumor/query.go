package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
	"github.com/ersonp/rumor-mill/internal/domain/services"
)

func newQueryCmd() *cobra.Command {
	var (
		search      string
		categories  []string
		minSeverity string
		minTruth    float64
		entityKnows string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List rumors matching filters",
		Long:  "Scans all rumors, newest first, applying the given filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				results, err := d.Service.QueryRumors(cmd.Context(), services.QueryFilter{
					SearchText:  search,
					Categories:  categories,
					MinSeverity: minSeverity,
					MinTruth:    minTruth,
					EntityKnows: entityKnows,
					Limit:       limit,
				})
				if err != nil {
					return fmt.Errorf("querying rumors: %w", err)
				}

				if len(results) == 0 {
					fmt.Println("No rumors found.")
					return nil
				}

				fmt.Printf("Found %d rumors:\n\n", len(results))
				for i, r := range results {
					fmt.Printf("%d. [%s/%s] %s\n", i+1, categoryList(r.Categories), r.Severity, r.OriginalContent)
					fmt.Printf("   id: %s  originator: %s  truth: %.2f  variants: %d  spreads: %d\n",
						r.RumorID, r.OriginatorID, r.TruthValue, r.VariantCount, r.SpreadCount)
					if entityKnows != "" {
						fmt.Printf("   %s believes %.2f: %s\n", entityKnows, r.EntityBelievability, r.EntityContent)
					}
					fmt.Println()
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring match on original content")
	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Filter by category")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "Minimum severity")
	cmd.Flags().Float64Var(&minTruth, "min-truth", 0, "Minimum truth value")
	cmd.Flags().StringVarP(&entityKnows, "known-by", "k", "", "Only rumors this entity knows")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of results")

	return cmd
}

func categoryList(categories []entities.Category) string {
	names := lo.Map(categories, func(c entities.Category, _ int) string { return string(c) })
	return strings.Join(names, ",")
}
