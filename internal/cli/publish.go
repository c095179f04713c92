package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/property"
)

func newPublishCmd() *cobra.Command {
	var form property.CreateForm

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a property (owners only)",
		Long:  "Publish a new listing with its details, a comma-separated amenity list and image files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, form)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Title, "title", "", "listing title")
	f.StringVar(&form.Description, "description", "", "listing description")
	f.StringVar(&form.Address, "address", "", "street address")
	f.StringVar(&form.Neighborhood, "neighborhood", "", "neighborhood")
	f.StringVar(&form.Price, "price", "", "monthly price")
	f.StringVar(&form.PropertyType, "type", "", "property type (apartment|house|room|studio)")
	f.StringVar(&form.Bedrooms, "bedrooms", "", "number of bedrooms")
	f.StringVar(&form.Bathrooms, "bathrooms", "", "number of bathrooms")
	f.StringVar(&form.AreaSqm, "area", "", "area in square meters")
	f.StringVar(&form.Amenities, "amenities", "", "comma-separated amenities (e.g. \"WiFi, Parqueadero\")")
	f.StringArrayVar(&form.Images, "image", nil, "image file to upload (repeatable)")

	return cmd
}

func runPublish(cmd *cobra.Command, form property.CreateForm) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.app.CreateProperty(cmd.Context(), form)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(w, p)
	}
	_, err = fmt.Fprintf(w, "Propiedad #%d publicada: %s\n", p.ID, p.Title)
	return err
}
