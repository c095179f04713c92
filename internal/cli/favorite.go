package cli

import (
	"github.com/spf13/cobra"
)

func newFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Save a property to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE:  runFavorite,
	}
}

func runFavorite(cmd *cobra.Command, args []string) error {
	id, err := parseID("property", args[0])
	if err != nil {
		return err
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.app.ToggleFavorite(cmd.Context(), id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"property_id": id,
			"favorite":    true,
		})
	}
	return nil
}
