package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/abgdnv/giftcatalog/internal/config"
	productv1 "github.com/abgdnv/giftcatalog/pkg/api/product/v1"
	grpcclient "github.com/abgdnv/giftcatalog/pkg/client/grpc"
	"github.com/abgdnv/giftcatalog/pkg/config/configloader"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one product of a running service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid product ID: %q", args[0])
		}
		client, closeFn, err := newProductClient()
		if err != nil {
			return err
		}
		defer closeFn()

		product, err := client.GetProduct(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get product %d: %w", id, err)
		}
		return printJSON(cmd.OutOrStdout(), product)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all products of a running service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, closeFn, err := newProductClient()
		if err != nil {
			return err
		}
		defer closeFn()

		products, err := client.ListProducts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), products)
	},
}

var existsCmd = &cobra.Command{
	Use:   "exists <name>",
	Short: "Report whether a product with this exact name exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closeFn, err := newProductClient()
		if err != nil {
			return err
		}
		defer closeFn()

		exists, err := client.ExistsByName(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to check product name: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), map[string]bool{"exists": exists})
	},
}

// newProductClient dials the product service configured in the client section.
func newProductClient() (*productv1.Client, func(), error) {
	cfg, err := configloader.LoadFile[*config.ClientConfigLoader](serviceName, configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	conn, err := grpcclient.NewClient(serviceName+"-cli", cfg.Client.GRPC, cfg.Client.Resilience)
	if err != nil {
		return nil, nil, err
	}
	return productv1.NewClient(productv1.NewProductServiceClient(conn)), func() { _ = conn.Close() }, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
