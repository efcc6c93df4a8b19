// ABOUTME: Session command for the mbank CLI
// ABOUTME: Shows the locally stored session state without touching the network

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtv/mbank-cli/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show local session status",
	Long: `Display whether a session token is stored, and when it decodes as a JWT,
its subject and expiry. The display is advisory: the backend is the only
authority on whether the token is still accepted, and no network call is
made here.

Exit codes:
  0 - A token is stored
  1 - Logged out`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runSession(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

// runSession prints the session snapshot and returns an exit code
func runSession(w io.Writer) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	snap := controller.Snapshot()

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(snap))
	} else {
		fmt.Fprintln(w, formatSessionHuman(snap))
	}

	if snap.State != session.StateAuthenticated {
		return exitRejected
	}
	return exitOK
}

// formatSessionHuman formats the snapshot for human readability
func formatSessionHuman(snap session.Snapshot) string {
	if snap.State != session.StateAuthenticated {
		return "Logged out. Run 'mbank login' to start a session."
	}

	out := "Session:  " + snap.State.String()
	if snap.Subject != "" {
		out += "\nSubject:  " + snap.Subject
	}
	if !snap.ExpiresAt.IsZero() {
		out += "\nExpires:  " + snap.ExpiresAt.Format(time.RFC3339)
		if time.Now().After(snap.ExpiresAt) {
			out += " (likely expired)"
		}
	}
	return out
}

// formatSessionJSON formats the snapshot as JSON
func formatSessionJSON(snap session.Snapshot) string {
	payload := map[string]any{
		"state": snap.State.String(),
	}
	if snap.Subject != "" {
		payload["subject"] = snap.Subject
	}
	if !snap.ExpiresAt.IsZero() {
		payload["expires_at"] = snap.ExpiresAt.Format(time.RFC3339)
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return string(data)
}
