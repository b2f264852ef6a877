package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <rumor-id>",
		Short: "Delete a rumor",
		Long:  "Removes the rumor, its variants, and its spread records.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if !force && !confirmAction(fmt.Sprintf("Delete rumor %s?", args[0])) {
					fmt.Println("Cancelled.")
					return nil
				}

				deleted, err := d.Service.DeleteRumor(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("deleting rumor: %w", err)
				}
				if !deleted {
					fmt.Println("Rumor not found.")
					return nil
				}
				fmt.Printf("Deleted rumor: %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func confirmAction(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // Error ignored: EOF/error treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
