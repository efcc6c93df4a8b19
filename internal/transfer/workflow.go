// ABOUTME: Transfer workflow with local validation and post-submit refresh
// ABOUTME: Validates input, submits the transfer, then refreshes balances

package transfer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dtv/mbank-cli/internal/client"
)

// ValidationError is a client-side input failure, surfaced before any
// network attempt.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Input holds the raw form fields of one transfer attempt. Amount stays a
// string until validation so "abc" and "-5" get distinct reasons.
type Input struct {
	Receiver string
	Amount   string
	PIN      string
}

// Session is the guarded surface the workflow drives.
type Session interface {
	SubmitTransfer(ctx context.Context, req client.TransferRequest) (*client.TransferResult, error)
	Accounts(ctx context.Context) ([]client.Account, error)
}

// Result reports a completed transfer. Accounts carries the refreshed
// balances when the follow-up fetch succeeded; RefreshErr records its
// failure, which never undoes the transfer and only affects display.
type Result struct {
	Transfer   *client.TransferResult
	Accounts   []client.Account
	RefreshErr error
}

// Workflow submits transfers through a session controller.
type Workflow struct {
	session Session
}

// New creates a transfer workflow on top of the given session.
func New(session Session) *Workflow {
	return &Workflow{session: session}
}

// Validate checks the input, short-circuiting on the first failure:
// fields present, amount numeric, amount positive, PIN supplied.
func (w *Workflow) Validate(in Input) (client.TransferRequest, error) {
	if in.Receiver == "" || in.Amount == "" {
		return client.TransferRequest{}, &ValidationError{Message: "please fill in all fields"}
	}

	amount, err := strconv.ParseInt(in.Amount, 10, 64)
	if err != nil {
		return client.TransferRequest{}, &ValidationError{Message: "invalid amount"}
	}
	if amount <= 0 {
		return client.TransferRequest{}, &ValidationError{Message: "amount must be positive"}
	}

	if in.PIN == "" {
		return client.TransferRequest{}, &ValidationError{Message: "PIN is required"}
	}

	return client.TransferRequest{
		ReceiverAccountNumber: in.Receiver,
		Amount:                amount,
		PIN:                   in.PIN,
	}, nil
}

// Run validates and submits the transfer, then fetches fresh account
// balances. The refresh is issued strictly after the transfer resolves and
// its failure is reported separately, never as a transfer failure.
func (w *Workflow) Run(ctx context.Context, in Input) (*Result, error) {
	req, err := w.Validate(in)
	if err != nil {
		return nil, err
	}

	transfer, err := w.session.SubmitTransfer(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{Transfer: transfer}
	accounts, err := w.session.Accounts(ctx)
	if err != nil {
		result.RefreshErr = fmt.Errorf("balance refresh failed: %w", err)
		return result, nil
	}
	result.Accounts = accounts
	return result, nil
}
