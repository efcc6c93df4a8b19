// ABOUTME: Logout command for the mbank CLI
// ABOUTME: Clears the stored session token

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session token",
	Long:  `Remove the stored session token. Logging out while already logged out is a no-op.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns an exit code
func runLogout(w io.Writer) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	if err := controller.Logout(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	fmt.Fprintln(w, "Logged out")
	return exitOK
}
