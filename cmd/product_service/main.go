// Command product_service runs and operates the gift catalog product service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/giftcatalog/pkg/config/configloader"
	"github.com/spf13/cobra"
)

const serviceName = "product"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "product_service",
	Short: "Product catalog service",
	Long: `Serves the product catalog over HTTP and gRPC, applies its database
migrations, queries a running instance over gRPC and obtains access tokens from Keycloak.

Configuration is read from the YAML file, then .env, then PRODUCT_* environment variables.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", configloader.DefaultConfigFile, "path to the YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
