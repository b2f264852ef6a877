package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/rumor-mill/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a rumor data directory",
		Long:  "Creates the .rumor directory with a default config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	basePath := globalDataDir
	if basePath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		basePath = cwd
	}

	cfg := config.Default()
	if err := cfg.Save(basePath); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Initialized rumor directory in %s\n", basePath)
	return nil
}
