// ABOUTME: UI command launching the interactive terminal interface
// ABOUTME: Runs the full banking TUI on top of the shared session controller

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtv/mbank-cli/internal/session"
	"github.com/dtv/mbank-cli/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive terminal interface",
	Long: `Open the full-screen terminal interface.

Starts on the login screen, or directly on the account overview when a
saved session exists. Logs go to debug.log in the config directory
instead of the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, cfg, err := newController()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		dir := cfg.ConfigDir
		if dir == "" {
			dir = session.DefaultConfigDir()
		}
		return tui.Run(controller, dir, cfg.LogLevel)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
