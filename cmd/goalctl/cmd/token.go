package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/goaltracker/internal/config"
	"github.com/templui/goaltracker/internal/service"
)

// TokenCmd mints a bearer token for a user id, for local testing and scripts.
func TokenCmd() *cobra.Command {
	var (
		userID string
		expiry time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			cfg := config.Load()
			if expiry <= 0 {
				expiry = cfg.JWTExpiry
			}

			token, err := service.NewAuthService(cfg.JWTSecret, expiry).GenerateJWT(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	tokenCmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	tokenCmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRY)")

	return tokenCmd
}
