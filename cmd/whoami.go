// ABOUTME: Whoami command for the mbank CLI
// ABOUTME: Shows the authenticated user's profile

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtv/mbank-cli/internal/client"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user's profile",
	Long: `Fetch and display the profile of the authenticated user.

Exit codes:
  0 - Profile fetched
  1 - Not logged in or session rejected
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami fetches the profile and returns an exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	user, err := controller.Profile(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(user))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(user))
	}
	return exitOK
}

// formatWhoamiHuman formats the profile for human readability
func formatWhoamiHuman(user *client.User) string {
	return fmt.Sprintf(`User:      %s
Full name: %s
Role:      %s
ID:        %d`,
		user.Username, user.FullName, user.Role, user.ID)
}

// formatWhoamiJSON formats the profile as JSON
func formatWhoamiJSON(user *client.User) string {
	data, _ := json.MarshalIndent(user, "", "  ")
	return string(data)
}
