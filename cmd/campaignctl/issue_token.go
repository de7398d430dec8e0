package main

import (
	"fmt"

	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/spf13/cobra"
)

var issueTokenRole string

// issueTokenCmd signs an API token for an operator account
var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <subject>",
	Short: "Sign an API token for an operator or admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if issueTokenRole != jwt.RoleAdmin && issueTokenRole != jwt.RoleOperator {
			return fmt.Errorf("role must be %q or %q", jwt.RoleAdmin, jwt.RoleOperator)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		token, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn).Issue(args[0], issueTokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueTokenRole, "role", jwt.RoleOperator, "token role (admin or operator)")
}
