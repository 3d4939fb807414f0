package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rosterkeeper/internal/client/repositories/tokens"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Obtain a session token from the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		session, err := app.client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		err = app.tokens.Put(cmd.Context(), tokens.Token{
			Key:       tokens.AuthTokenKey,
			Value:     session.Token,
			ExpiresAt: session.ExpiresAt,
		})
		if err != nil {
			return err
		}

		color.Green("Logged in as %s", args[0])
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a backend account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		session, err := app.client.Register(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		err = app.tokens.Put(cmd.Context(), tokens.Token{
			Key:       tokens.AuthTokenKey,
			Value:     session.Token,
			ExpiresAt: session.ExpiresAt,
		})
		if err != nil {
			return err
		}

		color.Green("Account %s created", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.tokens.Delete(cmd.Context(), tokens.AuthTokenKey); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
