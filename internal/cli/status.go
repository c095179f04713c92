package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and session status",
		Long:  "Shows the configured endpoints and the stored session, and tests the connection to the API.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	w := cmd.OutOrStdout()
	snap := e.app.Session().Snapshot()

	fmt.Fprintf(w, "API:     %s\n", e.settings.APIURL)
	fmt.Fprintf(w, "Chat:    %s\n", e.settings.SocketURL)

	if !snap.Authenticated() {
		fmt.Fprintln(w, "Usuario: sin sesión")
		fmt.Fprintln(w, "\nEjecuta 'nearby login' para autenticarte.")
	} else {
		fmt.Fprintf(w, "Usuario: %s <%s> (%s)\n", snap.User.Name, snap.User.Email, snap.User.UserType.Label())
		printTokenExpiry(w, snap.Token, time.Now())
	}

	path := "/properties"
	if snap.Authenticated() {
		path = "/users/favorites"
	}
	checkAPI(w, e.settings.APIURL+path, snap.Token)
	return nil
}

// printTokenExpiry shows when the stored token expires. The server remains
// the authority; an expired token is only reported.
func printTokenExpiry(w io.Writer, token string, now time.Time) {
	exp, ok, err := tokenExpiry(token)
	switch {
	case err != nil:
		fmt.Fprintln(w, "Token:   no legible")
	case !ok:
		fmt.Fprintln(w, "Token:   sin expiración")
	case exp.Before(now):
		fmt.Fprintf(w, "Token:   expirado (%s)\n", exp.Local().Format("2006-01-02 15:04"))
	default:
		fmt.Fprintf(w, "Token:   expira %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
}

// checkAPI performs a single request against url and reports the outcome.
func checkAPI(w io.Writer, url, token string) {
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(w, "Estado:  ✗ URL inválida (%v)\n", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(w, "Estado:  ✗ no se puede contactar el servidor (%v)\n", err)
		return
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Fprintf(w, "warning: closing response body: %v\n", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK && token != "":
		fmt.Fprintln(w, "Estado:  ✓ conectado y autenticado")
	case resp.StatusCode == http.StatusOK:
		fmt.Fprintln(w, "Estado:  ✓ conectado")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		fmt.Fprintln(w, "Estado:  ✗ sesión rechazada")
		fmt.Fprintln(w, "\nEjecuta 'nearby login' para volver a autenticarte.")
	default:
		fmt.Fprintf(w, "Estado:  ✗ respuesta inesperada (%d)\n", resp.StatusCode)
	}
}
