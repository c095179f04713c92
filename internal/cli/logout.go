package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		Long:  "Removes the stored token and user from local storage.",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if !e.app.Session().Authenticated() {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No has iniciado sesión.")
		return err
	}

	if err := e.app.Logout(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
