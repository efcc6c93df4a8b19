// ABOUTME: Root command for the mbank CLI
// ABOUTME: Handles global flags and shared controller construction

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dtv/mbank-cli/internal/client"
	"github.com/dtv/mbank-cli/internal/config"
	"github.com/dtv/mbank-cli/internal/logger"
	"github.com/dtv/mbank-cli/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "mbank",
	Short: "CLI for the mobile banking backend",
	Long: `mbank is a command-line client for the mobile banking API.

It keeps one session token on disk between invocations; commands that need
authentication use it and drop it the moment the backend rejects it.

Environment Variables:
  MBANK_API_URL       Backend API URL (default: http://localhost:8080)
  MBANK_HTTP_TIMEOUT  Per-call timeout (default: 15s)
  MBANK_CONFIG_DIR    Override for the token/config directory`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides MBANK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newController wires config, gateway, and token store into a session
// controller. The --api-url flag wins over the environment.
func newController() (*session.Controller, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	url := cfg.APIURL
	if apiURL != "" {
		url = apiURL
	}

	dir := cfg.ConfigDir
	if dir == "" {
		dir = session.DefaultConfigDir()
	}

	gateway := client.NewWithTimeout(url, cfg.HTTPTimeout)
	store := session.NewStore(dir)
	return session.NewController(gateway, store, nil), cfg, nil
}

// Exit codes shared by all commands
const (
	exitOK          = 0
	exitRejected    = 1 // semantic refusal, invalid input, no session
	exitUnreachable = 2 // connectivity or internal failure
)

// reportError prints a failure and maps it to an exit code. Session
// signals get a redirect-to-login hint; transient failures invite a retry.
func reportError(w io.Writer, err error) int {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(w, "Not logged in. Run 'mbank login' first.")
		return exitRejected
	case errors.Is(err, session.ErrSessionInvalid):
		fmt.Fprintln(w, "Session expired or invalid. Please log in again.")
		return exitRejected
	case client.IsRejected(err):
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRejected
	case client.IsUnreachable(err):
		fmt.Fprintf(w, "Error: %v (check your connection and retry)\n", err)
		return exitUnreachable
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}
}

// promptLine reads one line of input with a visible prompt
func promptLine(w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads input without echoing it back to the terminal
func promptSecret(w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
