package main

import (
	"fmt"

	"github.com/abgdnv/giftcatalog/internal/config"
	"github.com/abgdnv/giftcatalog/pkg/auth"
	"github.com/abgdnv/giftcatalog/pkg/config/configloader"
	"github.com/spf13/cobra"
)

var tokenJSON bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain an access token for the mutating REST routes",
	Long: `Logs the auth.idp client in with the client credentials grant and prints the access token,
ready for an "Authorization: Bearer" header.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configloader.LoadFile[*config.TokenConfigLoader](serviceName, configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		source, err := auth.NewTokenSource(cfg.Auth.IdP)
		if err != nil {
			return err
		}
		token, err := source.Token(cmd.Context())
		if err != nil {
			return err
		}
		if tokenJSON {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"access_token": token.AccessToken,
				"token_type":   token.TokenType,
				"expires_in":   int64(token.ExpiresIn.Seconds()),
			})
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
		return err
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenJSON, "json", false, "print the token type and lifetime as well")
}
