package main

import (
	"fmt"

	"leadflow_backend/internal/leads/domain"

	"github.com/spf13/cobra"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Print the lead status catalog in display order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, status := range domain.StatusStrings() {
			fmt.Fprintln(cmd.OutOrStdout(), status)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}
