package main

import (
	"fmt"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawUser, _ := cmd.Flags().GetString("user")
		roles, _ := cmd.Flags().GetStringSlice("roles")

		userID, err := uuid.Parse(rawUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		token, err := httpkit.IssueAccessToken(cfg, userID, roles, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User ID (UUID) the token is issued to")
	tokenCmd.Flags().StringSlice("roles", []string{httpkit.RoleBOE}, "Comma-separated roles")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
