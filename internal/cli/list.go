package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/property"
)

func newListCmd() *cobra.Command {
	var f property.Filters
	var priceRange string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available properties",
		Long:  "List published properties, optionally filtered by type, bedrooms, price range and a free-text search.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, f, priceRange)
		},
	}

	cmd.Flags().StringVar(&f.PropertyType, "type", "", "property type (apartment|house|room|studio)")
	cmd.Flags().StringVar(&f.Bedrooms, "bedrooms", "", "number of bedrooms")
	cmd.Flags().StringVar(&priceRange, "price", "", "monthly price range as min-max (e.g. 500000-1000000)")
	cmd.Flags().StringVar(&f.Search, "search", "", "free-text search")

	return cmd
}

func runList(cmd *cobra.Command, f property.Filters, priceRange string) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var props []*property.Property
	if f.IsEmpty() && priceRange == "" {
		props, err = e.app.LoadProperties(cmd.Context(), f)
	} else {
		props, err = e.app.ApplyFilters(cmd.Context(), f, priceRange)
	}
	if err != nil {
		return err
	}

	return printProperties(cmd.OutOrStdout(), e, page.PropertiesGrid, props)
}

func newFavoritesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your saved properties",
		Args:  cobra.NoArgs,
		RunE:  runFavorites,
	}
}

func runFavorites(cmd *cobra.Command, args []string) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	props, err := e.app.LoadFavorites(cmd.Context())
	if err != nil {
		return err
	}
	return printProperties(cmd.OutOrStdout(), e, page.FavoritesGrid, props)
}

func newMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "mine",
		Aliases: []string{"my-properties"},
		Short:   "List the properties you publish",
		Args:    cobra.NoArgs,
		RunE:    runMine,
	}
}

func runMine(cmd *cobra.Command, args []string) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	props, err := e.app.LoadMyProperties(cmd.Context())
	if err != nil {
		return err
	}
	return printProperties(cmd.OutOrStdout(), e, page.MyPropertiesGrid, props)
}
