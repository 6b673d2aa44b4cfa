package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artem13815/freelance/pkg/security/jwt"
)

func newTokenCmd() *cobra.Command {
	var sub, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(sub)
			if err != nil {
				return fmt.Errorf("invalid --sub: %w", err)
			}
			switch role {
			case jwt.RoleClient, jwt.RoleFreelancer, jwt.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := jwt.NewGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTTTL()).Generate(cmd.Context(), id, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "subject user id (UUID)")
	cmd.Flags().StringVar(&role, "role", jwt.RoleFreelancer, "client | freelancer | admin")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
