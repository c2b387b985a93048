package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/matst80/slask-listings/pkg/server"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var username string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the write endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := envOr("ADMIN_TOKEN_SECRET", envOr("SLASK_TOKEN_HASH", ""))
			if secret == "" {
				return errors.New("ADMIN_TOKEN_SECRET is not set")
			}
			token, err := server.CreateAdminToken([]byte(secret), username, "admin", ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "facetctl", "username in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
