package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kevinbuckley/tripwit/internal/shared"
)

// readSecret prompts for the device secret without echoing it.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("secret must not be empty")
	}
	s := string(secret)
	shared.WipeByteArray(secret)
	return s, nil
}

func (a *App) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <login>",
		Short: "Register this device with the sync authority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret("Secret: ")
			if err != nil {
				return err
			}
			if err := a.authority.Register(cmd.Context(), args[0], secret); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registered; run `tripwit login` next")
			return nil
		},
	}
}

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <login>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret("Secret: ")
			if err != nil {
				return err
			}
			session, err := a.authority.Login(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			if err := saveSession(a.config.DataDir, session); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
}
