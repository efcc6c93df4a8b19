// ABOUTME: Transfer command for the mbank CLI
// ABOUTME: Validates input, submits a transfer, and shows refreshed balances

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtv/mbank-cli/internal/transfer"
)

var (
	transferTo     string
	transferAmount string
	transferPIN    string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer funds to another account",
	Long: `Validate and submit a fund transfer, then refresh the account balances.

A failed balance refresh after a successful transfer is reported as a
warning only; the transfer itself already completed.

Exit codes:
  0 - Transfer completed
  1 - Invalid input, transfer rejected, or not logged in
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		pin := transferPIN
		if needsPinPrompt(transferTo, transferAmount, transferPIN) {
			var err error
			if pin, err = promptSecret(os.Stdout, "PIN"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}

		exitCode := runTransfer(ctx, os.Stdout, transfer.Input{
			Receiver: transferTo,
			Amount:   transferAmount,
			PIN:      pin,
		})
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Receiver account number")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount in whole currency units")
	transferCmd.Flags().StringVar(&transferPIN, "pin", "", "Transaction PIN (prompted without echo when omitted)")
}

// needsPinPrompt reports whether the PIN is worth asking for. A missing
// receiver or amount fails validation regardless, so the user is not made
// to type their secret first.
func needsPinPrompt(to, amount, pin string) bool {
	return pin == "" && to != "" && amount != ""
}

// runTransfer executes the workflow and returns an exit code
func runTransfer(ctx context.Context, w io.Writer, in transfer.Input) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	workflow := transfer.New(controller)
	result, err := workflow.Run(ctx, in)
	if err != nil {
		var ve *transfer.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(w, "Error: %s\n", ve.Message)
			return exitRejected
		}
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatTransferJSON(result))
	} else {
		fmt.Fprintln(w, formatTransferHuman(result))
	}
	return exitOK
}

// formatTransferHuman formats the transfer outcome for human readability
func formatTransferHuman(result *transfer.Result) string {
	out := "Transfer complete."
	if result.RefreshErr != nil {
		out += "\nWarning: could not refresh balances; displayed values may be stale."
		return out
	}
	if primary, ok := primaryAccount(result); ok {
		out += fmt.Sprintf("\nNew balance: %d", primary)
	}
	return out
}

// formatTransferJSON formats the transfer outcome as JSON
func formatTransferJSON(result *transfer.Result) string {
	payload := map[string]any{
		"status":   "completed",
		"accounts": result.Accounts,
	}
	if result.RefreshErr != nil {
		payload["refresh_error"] = result.RefreshErr.Error()
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return string(data)
}

// primaryAccount extracts the first refreshed balance when present
func primaryAccount(result *transfer.Result) (int64, bool) {
	if len(result.Accounts) == 0 {
		return 0, false
	}
	return result.Accounts[0].Balance, true
}
