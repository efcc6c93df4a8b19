// ABOUTME: Accounts command for the mbank CLI
// ABOUTME: Lists account balances for the logged-in user

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtv/mbank-cli/internal/client"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List account balances",
	Long: `Fetch and display the authenticated user's accounts in server order.
The first account is treated as the primary one.

Exit codes:
  0 - Accounts fetched
  1 - Not logged in or session rejected
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAccounts(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

// runAccounts fetches the account list and returns an exit code
func runAccounts(ctx context.Context, w io.Writer) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	accounts, err := controller.Accounts(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatAccountsJSON(accounts))
	} else {
		fmt.Fprintln(w, formatAccountsHuman(accounts))
	}
	return exitOK
}

// formatAccountsHuman formats the account list for human readability
func formatAccountsHuman(accounts []client.Account) string {
	if len(accounts) == 0 {
		return "No accounts found."
	}

	var sb strings.Builder
	for i, acct := range accounts {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		number := acct.AccountNumber
		if number == "" {
			number = fmt.Sprintf("account %d", i+1)
		}
		fmt.Fprintf(&sb, "%s %-16s %12d\n", marker, number, acct.Balance)
	}
	sb.WriteString("\n* primary account")
	return sb.String()
}

// formatAccountsJSON formats the account list as JSON
func formatAccountsJSON(accounts []client.Account) string {
	data, _ := json.MarshalIndent(accounts, "", "  ")
	return string(data)
}
