// ABOUTME: PIN commands for the mbank CLI
// ABOUTME: Requests an OTP and confirms a new transaction PIN

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
	pinPassword string
	pinOtp      string
	pinNew      string
)

// pinLength is what the backend expects; checked locally before any call
const pinLength = 6

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Set up a transaction PIN",
	Long:  `Request an OTP and confirm a new 6-digit transaction PIN.`,
}

var pinRequestOtpCmd = &cobra.Command{
	Use:   "request-otp",
	Short: "Request a one-time code for PIN setup",
	Long: `Ask the backend to email a one-time code. The code is held server-side;
supply it to 'mbank pin set' together with your password and the new PIN.

Exit codes:
  0 - OTP requested
  1 - Not logged in or request rejected
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPinRequestOtp(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var pinSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Confirm the new PIN with password and OTP",
	Long: `Set the transaction PIN. Requires the account password, the emailed OTP,
and a 6-digit PIN. A wrong OTP or password fails the attempt but keeps the
session; request a fresh OTP and retry.

Exit codes:
  0 - PIN set
  1 - Invalid input or confirmation rejected
  2 - Backend unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		password := pinPassword
		otp := pinOtp
		newPin := pinNew
		var err error
		if password == "" {
			if password, err = promptSecret(os.Stdout, "Password"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}
		if otp == "" {
			if otp, err = promptLine(os.Stdout, "OTP"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}
		if newPin == "" {
			if newPin, err = promptSecret(os.Stdout, "New PIN"); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitUnreachable)
			}
		}

		exitCode := runPinSet(ctx, os.Stdout, password, otp, newPin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
	pinCmd.AddCommand(pinRequestOtpCmd)
	pinCmd.AddCommand(pinSetCmd)
	pinSetCmd.Flags().StringVar(&pinPassword, "password", "", "Account password (prompted when omitted)")
	pinSetCmd.Flags().StringVar(&pinOtp, "otp", "", "One-time code from email (prompted when omitted)")
	pinSetCmd.Flags().StringVar(&pinNew, "pin", "", "New 6-digit PIN (prompted when omitted)")
}

// runPinRequestOtp asks for an OTP and returns an exit code
func runPinRequestOtp(ctx context.Context, w io.Writer) int {
	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	ack, err := controller.RequestPinOtp(ctx)
	if err != nil {
		return reportError(w, err)
	}

	msg := ack.Message
	if msg == "" {
		msg = "OTP sent, check your email"
	}
	fmt.Fprintln(w, msg)
	return exitOK
}

// runPinSet validates and confirms the new PIN, returning an exit code
func runPinSet(ctx context.Context, w io.Writer, password, otp, newPin string) int {
	if err := validatePinInput(password, otp, newPin); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRejected
	}

	controller, _, err := newController()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUnreachable
	}

	ack, err := controller.SetPin(ctx, password, otp, newPin)
	if err != nil {
		return reportError(w, err)
	}

	msg := ack.Message
	if msg == "" {
		msg = "PIN set successfully"
	}
	fmt.Fprintln(w, msg)
	return exitOK
}

// validatePinInput enforces the local rules before any network call
func validatePinInput(password, otp, newPin string) error {
	if password == "" || otp == "" || newPin == "" {
		return fmt.Errorf("password, OTP, and new PIN are all required")
	}
	if len(newPin) != pinLength {
		return fmt.Errorf("PIN must be exactly %d digits", pinLength)
	}
	for _, r := range newPin {
		if r < '0' || r > '9' {
			return fmt.Errorf("PIN must contain digits only")
		}
	}
	return nil
}
