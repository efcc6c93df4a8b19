// ABOUTME: Login command for the mbank CLI
// ABOUTME: Authenticates against the backend and stores the session token

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session token",
	Long: `Authenticate with username and password and persist the session token.

The password is prompted without echo when not passed by flag.

Exit codes:
  0 - Logged in
  1 - Credentials rejected
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		username := loginUsername
		password := loginPassword
		var err error
		if username == "" {
			if username, err = promptLine(os.Stdout, "Username"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}
		if password == "" {
			if password, err = promptSecret(os.Stdout, "Password"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}

		exitCode := runLogin(ctx, os.Stdout, username, password)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted without echo when omitted)")
}

// runLogin performs the login and returns an exit code
func runLogin(ctx context.Context, w io.Writer, username, password string) int {
	if username == "" || password == "" {
		fmt.Fprintln(w, "Error: username and password are required")
		return exitRejected
	}

	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	if err := controller.Login(ctx, username, password); err != nil {
		return reportError(w, err)
	}

	fmt.Fprintf(w, "Logged in as %s\n", username)
	return exitOK
}
