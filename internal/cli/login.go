package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/user"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the marketplace",
		Long:  "Logs in with email and password and stores the session for later commands. The password is read from stdin when --password is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	if password == "" {
		var err error
		password, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Contraseña: ")
		if err != nil {
			return err
		}
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.app.Login(cmd.Context(), email, password); err != nil {
		return err
	}
	return printUser(cmd.OutOrStdout(), e.app.User())
}

func newRegisterCmd() *cobra.Command {
	var reg client.Registration
	var userType string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a marketplace account",
		Long:  "Creates a student or owner account and logs in with it. The student ID is only sent for student accounts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.UserType = user.Type(userType)
			return runRegister(cmd, reg)
		},
	}

	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&userType, "type", string(user.Student), "account type (student|owner)")
	cmd.Flags().StringVar(&reg.StudentID, "student-id", "", "university student ID (students only)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runRegister(cmd *cobra.Command, reg client.Registration) error {
	if reg.Password == "" {
		var err error
		reg.Password, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Contraseña: ")
		if err != nil {
			return err
		}
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.app.Register(cmd.Context(), reg); err != nil {
		return err
	}
	return printUser(cmd.OutOrStdout(), e.app.User())
}

// printUser reports the logged-in account.
func printUser(w io.Writer, u *user.User) error {
	if u == nil {
		return fmt.Errorf("no user in session")
	}
	if isJSON() {
		return printJSON(w, u)
	}
	_, err := fmt.Fprintf(w, "✓ Sesión iniciada como %s (%s)\n", u.Name, u.UserType.Label())
	return err
}

// promptLine prints prompt to w and reads one trimmed line from r.
func promptLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no password provided")
	}
	return line, nil
}
