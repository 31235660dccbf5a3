package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"insighthub/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var subject, name string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with auth.jwt_secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Auth.JWTSecret == "" {
				return a.printer.Error("no signing secret",
					"auth.jwt_secret is empty.",
					"Set INSIGHTHUB_AUTH_JWT_SECRET to the server's secret.")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = a.cfg.Auth.TokenTTL
			}
			if ttl <= 0 {
				return a.fail(errors.New("--ttl must be positive"))
			}
			token, err := auth.Issue(a.cfg.Auth.JWTSecret, subject, name, ttl)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().StringVar(&name, "name", "", "Display name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default auth.token_ttl)")
	return cmd
}
