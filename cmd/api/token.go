// cmd/api/token.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/pkg/auth"
)

var (
	tokenAdmin bool

	tokenCmd = &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an access token for the admin endpoints",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
)

func init() {
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", true, "grant the admin claim")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	token, err := auth.NewJWTManager(cfg.JWT, cfg.App.Name).GenerateAccessToken(args[0], tokenAdmin)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
