// Package main provides the entry point for the rumor CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalDataDir string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "rumor",
		Short:   "A rumor propagation engine with mutation lineage and belief decay",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDataDir, "data-dir", "d", "", "Data directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newSpreadCmd(),
		newMutateCmd(),
		newQueryCmd(),
		newKnownCmd(),
		newBelieveCmd(),
		newDecayCmd(),
		newDeleteCmd(),
		newChainCmd(),
		newSimilarCmd(),
		newStatsCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
